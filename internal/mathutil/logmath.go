package mathutil

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// IsLogZero reports whether x is at or below LogZero.
func IsLogZero(x float64) bool {
	return x <= LogZero
}
