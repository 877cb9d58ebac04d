package usecase

import "ftse_backend/internal/feature/signal/domain/entity"

// Derive は (last_close, predicted_close) から方向・信頼バンド・シグナルを導出します。
// 予測値が last_close と等しい場合は UP、バンド端ちょうどはバンドを超えたものとして扱います。
func Derive(lastClose, predictedClose, bandPct float64) entity.Derivation {
	d := entity.Derivation{
		Direction: entity.DirectionDown,
		BandLower: lastClose * (1 - bandPct/100),
		BandUpper: lastClose * (1 + bandPct/100),
		Signal:    entity.SignalNoTrade,
	}
	if predictedClose >= lastClose {
		d.Direction = entity.DirectionUp
	}

	switch {
	case d.Direction == entity.DirectionUp && predictedClose >= d.BandUpper:
		d.Signal = entity.SignalLong
	case d.Direction == entity.DirectionDown && predictedClose <= d.BandLower:
		d.Signal = entity.SignalShort
	}
	return d
}

// DirectionHit は予測と実績の last_close に対する騰落の符号が一致するかを返します。
// 符号は -1, 0, 1 の3値で、横ばい同士は一致とみなします。
func DirectionHit(lastClose, predictedClose, actualClose float64) bool {
	return sign(actualClose-lastClose) == sign(predictedClose-lastClose)
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
