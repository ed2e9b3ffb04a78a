package model

// 角色取值
const (
	RoleAdmin   = "admin"
	RoleHOD     = "hod"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User 用户表 — 对应 users（身份服务维护，本服务只读）
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	DirectoryModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsTeacher 是否具有任课教师角色
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
