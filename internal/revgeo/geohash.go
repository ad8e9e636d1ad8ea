package revgeo

import (
	geohash "github.com/TomiHiltunen/geohash-golang"
)

// cacheKeyPrecision：geohash 6 位约 1.2km × 0.6km，同一格内的查询共享最近县
const cacheKeyPrecision = 6

func encodeGeohash(lat, lon float64, precision int) string {
	return geohash.EncodeWithPrecision(lat, lon, precision)
}
