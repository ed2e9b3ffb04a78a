package model

// Group 教学班 — 对应 student_groups
// 一个班级绑定唯一学期与专业，至多拥有一张课表
type Group struct {
	GroupID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	ProgramID  string `gorm:"type:uuid;not null"                             json:"program_id"`
	SemesterID string `gorm:"type:uuid;not null"                             json:"semester_id"`
	DirectoryModel

	// 关联
	Program  *Program  `gorm:"foreignKey:ProgramID;references:ProgramID"   json:"program,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "student_groups" }

// DepartmentID 班级所属院系（需预加载 Program）
func (g *Group) DepartmentID() string {
	if g.Program == nil {
		return ""
	}
	return g.Program.DepartmentID
}
