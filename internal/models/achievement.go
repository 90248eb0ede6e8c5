package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

// Achievement is a journal entry. Images and ImageTimestamps are parallel:
// ImageTimestamps[i] is the object-store token of Images[i].
type Achievement struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Date            string    `json:"date"`
	Images          []string  `json:"images"`
	ImageTimestamps []string  `json:"image_timestamps"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a Achievement) Clone() Achievement {
	c := a
	c.Images = cloneStrings(a.Images)
	c.ImageTimestamps = cloneStrings(a.ImageTimestamps)
	c.Tags = cloneStrings(a.Tags)
	return c
}

// ImagesAligned reports whether the image arrays have equal length.
func (a Achievement) ImagesAligned() bool {
	return len(a.Images) == len(a.ImageTimestamps)
}

// RemoveImageAt drops the image at index i from both arrays and returns the
// removed token. The receiver is left unchanged on error.
func (a *Achievement) RemoveImageAt(i int) (string, error) {
	if !a.ImagesAligned() {
		return "", fmt.Errorf("%w: images and image_timestamps differ in length", common.ErrValidation)
	}
	if i < 0 || i >= len(a.Images) {
		return "", fmt.Errorf("%w: %d (have %d images)", common.ErrInvalidIndex, i, len(a.Images))
	}
	token := a.ImageTimestamps[i]
	a.Images = append(cloneStrings(a.Images[:i]), a.Images[i+1:]...)
	a.ImageTimestamps = append(cloneStrings(a.ImageTimestamps[:i]), a.ImageTimestamps[i+1:]...)
	return token, nil
}

// ParsedDate returns Date as a time in UTC.
func (a Achievement) ParsedDate() (time.Time, error) {
	return time.Parse(common.DateLayout, a.Date)
}

// HasAnyTag reports whether a carries at least one of tags.
func (a Achievement) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range a.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ImageFile is an attachment to upload.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type CreateAchievementRequest struct {
	Title   string
	Content string
	Date    string
	Tags    []string
	Images  []ImageFile
}

func (r CreateAchievementRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	return validateDate("date", r.Date)
}

// UpdateAchievementRequest is a partial update. NewImages are appended after
// the images listed in RemoveImages (indexes into the current arrays) have
// been dropped.
type UpdateAchievementRequest struct {
	Title        *string
	Content      *string
	Date         *string
	Tags         []string
	NewImages    []ImageFile
	RemoveImages []int
}

func (r UpdateAchievementRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if r.Date != nil {
		if err := validateDate("date", *r.Date); err != nil {
			return err
		}
	}
	seen := make(map[int]struct{}, len(r.RemoveImages))
	for _, i := range r.RemoveImages {
		if _, dup := seen[i]; dup {
			return fmt.Errorf("%w: image index %d listed twice", common.ErrValidation, i)
		}
		seen[i] = struct{}{}
	}
	return nil
}

func (r UpdateAchievementRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Date == nil && r.Tags == nil &&
		len(r.NewImages) == 0 && len(r.RemoveImages) == 0
}

// UploadedImage is a stored attachment: its public URL and the token that
// addresses it in the object store.
type UploadedImage struct {
	URL   string
	Token string
}
