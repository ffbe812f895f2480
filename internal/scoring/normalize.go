package scoring

import "math"

// DefaultMinMessages is the sample size below which scores scale down
// linearly toward zero.
const DefaultMinMessages = 50

// volumeCeiling caps the logarithmic confidence ramp. Conversations past
// ten thousand messages all earn the full multiplier.
const volumeCeiling = 10000

// NormalizeByVolume dampens a score computed over few messages so that tiny
// exports cannot produce extreme results. Below DefaultMinMessages the
// value shrinks linearly with volume; above it the multiplier climbs
// logarithmically on a 0.7 base, reaching 1.0 at ten thousand messages.
func NormalizeByVolume(value float64, totalMessages int) float64 {
	return NormalizeByVolumeMin(value, totalMessages, DefaultMinMessages)
}

// NormalizeByVolumeMin is NormalizeByVolume with an explicit minimum sample
// size. Non-positive minimums fall back to DefaultMinMessages.
func NormalizeByVolumeMin(value float64, totalMessages, minMessages int) float64 {
	if minMessages <= 0 {
		minMessages = DefaultMinMessages
	}
	if totalMessages <= 0 {
		return 0
	}
	if totalMessages < minMessages {
		return value * float64(totalMessages) / float64(minMessages)
	}
	n := math.Min(float64(totalMessages), volumeCeiling)
	return value * (0.7 + 0.3*math.Log10(n)/math.Log10(volumeCeiling))
}
