// Package tradingday は営業日（月〜金）の計算と、日付をキーとする疎な系列の前方スキャンを提供します。
// 祝日カレンダーは持たず、週末のみを非営業日として扱います。
package tradingday

import "time"

// Layout は日付キーの書式（ISO 8601）です。
const Layout = "2006-01-02"

// Date は時刻部分を切り捨てたUTCの日付を返します。
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key は日付キー（YYYY-MM-DD）を返します。
func Key(t time.Time) string {
	return Date(t).Format(Layout)
}

// Parse は YYYY-MM-DD 形式の文字列をUTCの日付として解釈します。
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// IsWeekday は土日以外であれば true を返します。
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Next は t の翌日以降で最初の平日を返します。
func Next(t time.Time) time.Time {
	d := Date(t).AddDate(0, 0, 1)
	for !IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// ScanForward は from を起点に1日ずつ進めながら ok を満たす最初の日付を探します。
// 調べるのは from 自身を含めて最大 attempts 日です。
func ScanForward(from time.Time, attempts int, ok func(time.Time) bool) (time.Time, bool) {
	d := Date(from)
	for i := 0; i < attempts; i++ {
		if ok(d) {
			return d, true
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// RollForward は日付キーの疎な系列から from 以降で最初に存在する値を返します。
// 見つかった日付も併せて返します。attempts 日以内に値がなければ false です。
func RollForward[V any](series map[string]V, from time.Time, attempts int) (V, time.Time, bool) {
	var found V
	d, ok := ScanForward(from, attempts, func(d time.Time) bool {
		v, exists := series[Key(d)]
		if exists {
			found = v
		}
		return exists
	})
	return found, d, ok
}
