package dto

// UploadDocumentRequest carries the metadata half of a multipart upload.
type UploadDocumentRequest struct {
	DisplayName  string  `form:"display_name" validate:"required"`
	Description  *string `form:"description"`
	CourseID     *int64  `form:"course_id"`
	ModuleID     *int64  `form:"module_id"`
	ActivityID   *int64  `form:"activity_id"`
	StudentID    *string `form:"student_id"`
	IsSubmission bool    `form:"is_submission"`
}

// SetDocumentStatusRequest moves a document to a new review status.
type SetDocumentStatusRequest struct {
	Status   string  `json:"status" validate:"required,oneof=PENDING REVIEW APPROVED REJECTED"`
	Feedback *string `json:"feedback"`
}
