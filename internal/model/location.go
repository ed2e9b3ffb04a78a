package model

// Location 教室 / 上课地点 — 对应 locations
type Location struct {
	LocationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"location_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Building   string `gorm:"type:varchar(100)"                              json:"building,omitempty"`
	Capacity   int    `gorm:"not null;default:0"                             json:"capacity"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Location) TableName() string { return "locations" }
