package api

import (
	"dotglobe/internal/geoloc"
	"dotglobe/internal/land"
	"dotglobe/internal/view"
)

// 文档注释：对外返回结构
// 约束：字段稳定；新增字段需评估前端依赖。

type landResult struct {
	Loaded bool `json:"loaded"`
	land.Stats
}

type landAtResult struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	land.Hit
}

type visitorResult struct {
	IP       string           `json:"ip"`
	Located  bool             `json:"located"`
	Source   string           `json:"source,omitempty"`
	Location *geoloc.Location `json:"location,omitempty"`
	Home     view.State       `json:"home"`
}

type errorResult struct {
	Error string `json:"error"`
}
