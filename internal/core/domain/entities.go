package domain

import (
	"time"
)

// Careers a bootcamp may prepare students for.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Skill levels a course may require.
var Skills = []string{"beginner", "intermediate", "advanced"}

// DefaultPhoto is stored when a bootcamp has no photo.
const DefaultPhoto = "no-photo.jpg"

// Bootcamp is a coding school listed in the directory.
type Bootcamp struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description,omitempty"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers,omitempty"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo,omitempty"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`
	Courses       []Course  `json:"courses,omitempty"` // populated on list
}

// BootcampSummary is the subset of a bootcamp embedded in course responses.
type BootcampSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Course belongs to exactly one bootcamp.
type Course struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Weeks                string           `json:"weeks"`
	Tuition              float64          `json:"tuition"`
	MinimumSkill         string           `json:"minimumSkill"`
	ScholarshipAvailable bool             `json:"scholarshipAvailable"`
	CreatedAt            time.Time        `json:"createdAt"`
	BootcampID           string           `json:"bootcampId"`
	Bootcamp             *BootcampSummary `json:"bootcamp,omitempty"` // populated on list/get
}

// BootcampInput is the body accepted by create. Update uses BootcampPatch.
type BootcampInput struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	AverageRating *float64 `json:"averageRating" validate:"omitempty,min=1,max=10"`
	Photo         string   `json:"photo"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// BootcampPatch carries only the fields present in an update body.
type BootcampPatch struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=50"`
	Description   *string  `json:"description" validate:"omitempty,min=1,max=500"`
	Website       *string  `json:"website" validate:"omitempty,url"`
	Phone         *string  `json:"phone" validate:"omitempty,max=20"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Address       *string  `json:"address" validate:"omitempty,min=1"`
	Careers       []string `json:"careers" validate:"omitempty,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	AverageRating *float64 `json:"averageRating" validate:"omitempty,min=1,max=10"`
	Photo         *string  `json:"photo"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`

	// Set by the service, never by clients.
	Slug *string `json:"-"`
}

// Empty reports whether the patch changes nothing.
func (p BootcampPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Website == nil && p.Phone == nil &&
		p.Email == nil && p.Address == nil && p.Careers == nil && p.AverageRating == nil &&
		p.Photo == nil && p.Housing == nil && p.JobAssistance == nil && p.JobGuarantee == nil &&
		p.AcceptGi == nil && p.Slug == nil
}

// CourseInput is the body accepted by course create.
type CourseInput struct {
	Title                string  `json:"title" validate:"required"`
	Description          string  `json:"description" validate:"required"`
	Weeks                string  `json:"weeks" validate:"required"`
	Tuition              float64 `json:"tuition" validate:"required,gt=0"`
	MinimumSkill         string  `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

// CoursePatch carries only the fields present in a course update body.
type CoursePatch struct {
	Title                *string  `json:"title" validate:"omitempty,min=1"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *string  `json:"weeks" validate:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gt=0"`
	MinimumSkill         *string  `json:"minimumSkill" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// Empty reports whether the patch changes nothing.
func (p CoursePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Weeks == nil && p.Tuition == nil &&
		p.MinimumSkill == nil && p.ScholarshipAvailable == nil
}

// DirectoryEvent is published after every successful write.
type DirectoryEvent struct {
	Kind     string    `json:"kind"`   // bootcamp | course
	Action   string    `json:"action"` // created | updated | deleted
	ID       string    `json:"id"`
	Bootcamp string    `json:"bootcamp_id,omitempty"`
	Time     time.Time `json:"time"`
}
