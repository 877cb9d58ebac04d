package cache

import (
	"time"
)

// refreshHour は日足が確定したとみなすロンドン時間の時刻です（取引終了16:30の後）。
const refreshHour = 18

// TimeUntilNextRefresh は now から次のロンドン時間18時までの期間を返します。
func TimeUntilNextRefresh(now time.Time) time.Duration {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	next := time.Date(local.Year(), local.Month(), local.Day(), refreshHour, 0, 0, 0, loc)
	// 今日の18時が既に過ぎている場合は翌日の18時を使用
	if !local.Before(next) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, refreshHour, 0, 0, 0, loc)
	}
	return next.Sub(now)
}
