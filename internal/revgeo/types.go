package revgeo

// 点坐标（WGS84）
type Point struct {
	Lat float64
	Lon float64
}

// Place：参与最近邻查询的地点（县的代表坐标）
type Place struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"latitude"`
	Lon  float64 `json:"longitude"`
}

// Match：最近的地点与距离（千米）
type Match struct {
	Place
	DistanceKm float64 `json:"distance_km"`
}
