package models

import (
	"time"
)

// BaseModel provides the id and timestamps every backend record carries
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is the operator account, as returned by /auth/me and /auth/users.
// IsAdmin maps the backend's is_superuser flag.
type User struct {
	BaseModel
	Username       string `json:"username" gorm:"uniqueIndex;not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	FullName       string `json:"full_name,omitempty"`
	IsActive       bool   `json:"is_active" gorm:"not null;default:true"`
	IsAdmin        bool   `json:"is_superuser" gorm:"column:is_superuser;not null;default:false"`
	HashedPassword string `json:"-" gorm:"not null"`
}

// DisplayName returns the full name when set, otherwise the username
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Job is a recruitment requirement (position)
type Job struct {
	BaseModel
	PositionName     string   `json:"position_name" gorm:"not null;index"`
	Department       string   `json:"department,omitempty" gorm:"index"`
	Responsibilities string   `json:"responsibilities"`
	Requirements     string   `json:"requirements"`
	SalaryRange      string   `json:"salary_range,omitempty"`
	Location         string   `json:"location,omitempty"`
	Tags             []string `json:"tags,omitempty" gorm:"serializer:json"`
}

// JobParseResult is a job document parsed without saving it
type JobParseResult struct {
	PositionName     string   `json:"position_name,omitempty"`
	Department       string   `json:"department,omitempty"`
	Responsibilities string   `json:"responsibilities,omitempty"`
	Requirements     string   `json:"requirements,omitempty"`
	SalaryRange      string   `json:"salary_range,omitempty"`
	Location         string   `json:"location,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// Tag labels a resume with a skill or trait
type Tag struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	ResumeID uint   `json:"-" gorm:"index"`
}

// Resume is an uploaded candidate document and its parsed content
type Resume struct {
	BaseModel
	CandidateName  string `json:"candidate_name" gorm:"index"`
	FileURL        string `json:"file_url"`
	FileType       string `json:"file_type"`
	OCRContent     string `json:"ocr_content,omitempty"`
	ParsedContent  string `json:"parsed_content,omitempty"`
	TalentPortrait string `json:"talent_portrait,omitempty"`
	Tags           []Tag  `json:"tags,omitempty"`
}

// Match scores one resume against one job
type Match struct {
	BaseModel
	ResumeID         uint    `json:"resume_id" gorm:"not null;index"`
	JobID            uint    `json:"job_id" gorm:"not null;index"`
	MatchScore       float64 `json:"match_score"`
	MatchExplanation string  `json:"match_explanation,omitempty"`
}

// Plan is a recruitment plan generated for a job
type Plan struct {
	BaseModel
	Title        string `json:"title" gorm:"not null"`
	JobID        uint   `json:"job_id" gorm:"not null;index"`
	Description  string `json:"description,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
	CandidateIDs []uint `json:"candidate_ids,omitempty" gorm:"serializer:json"`
}

// Token is the login response body
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
