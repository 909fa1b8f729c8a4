package models

// Course, Module and Activity are managed elsewhere in the platform; the
// document flows only need their identifiers and display names.

type Course struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Module struct {
	ID       int64  `db:"id" json:"id"`
	CourseID int64  `db:"course_id" json:"course_id"`
	Name     string `db:"name" json:"name"`
}

type Activity struct {
	ID       int64  `db:"id" json:"id"`
	ModuleID int64  `db:"module_id" json:"module_id"`
	Title    string `db:"title" json:"title"`
}
