package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultProjectName        = "Unnamed Project"
	DefaultProjectDescription = "No description"
	DefaultProjectCategory    = "Project"
	DefaultDaysLeft           = 30

	// MaxWholeNumber bounds every integer-valued field on read and write.
	MaxWholeNumber = math.MaxInt32
)

// Project is the canonical, caller-facing project shape.
type Project struct {
	ID                 string    `json:"id"`
	InternalID         string    `json:"internalId,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	AttachmentCount    int       `json:"attachmentCount"`
	TotalTaskCount     int       `json:"totalTaskCount"`
	CompletedTaskCount int       `json:"completedTaskCount"`
	ProgressionPercent float64   `json:"progressionPercent"`
	DaysLeft           int       `json:"daysLeft"`
	IsFavorite         bool      `json:"isFavorite"`
	Members            []Member  `json:"members"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero"`
}

// Every key a project field has ever been stored under.
var (
	ProjectName               = Aliases{"name", "ProjectName"}
	ProjectDescription        = Aliases{"desc", "description", "Description"}
	ProjectCategory           = Aliases{"category"}
	ProjectAttachmentCount    = Aliases{"attachmentCount"}
	ProjectTotalTaskCount     = Aliases{"totalTaskCount", "totalTask"}
	ProjectCompletedTaskCount = Aliases{"completedTaskCount", "completedTask"}
	ProjectProgression        = Aliases{"progressionPercent", "progression"}
	ProjectDaysLeft           = Aliases{"daysLeft", "dayleft"}
	ProjectFavorite           = Aliases{"isFavorite", "favourite", "favorite"}
	ProjectMembers            = Aliases{"members", "member"}
)

var projectFields = []Aliases{
	ProjectName,
	ProjectDescription,
	ProjectCategory,
	ProjectAttachmentCount,
	ProjectTotalTaskCount,
	ProjectCompletedTaskCount,
	ProjectProgression,
	ProjectDaysLeft,
	ProjectFavorite,
	ProjectMembers,
}

// NormalizeProject converts a raw project document into its canonical form.
// Every field resolves independently: canonical key, then legacy keys, then
// the documented default.
func NormalizeProject(raw RawRecord) Project {
	p := Project{
		ID:          resolveID(raw),
		Name:        DefaultProjectName,
		Description: DefaultProjectDescription,
		Category:    DefaultProjectCategory,
		DaysLeft:    DefaultDaysLeft,
		Members:     []Member{},
		CreatedAt:   raw.timestamp(KeyCreatedAt),
		UpdatedAt:   raw.timestamp(KeyUpdatedAt),
	}
	p.InternalID, _ = ToText(raw[KeyInternalID])

	if s, ok := raw.text(ProjectName); ok {
		p.Name = s
	}
	if s, ok := raw.text(ProjectDescription); ok {
		p.Description = s
	}
	if s, ok := raw.text(ProjectCategory); ok {
		p.Category = s
	}
	if n, ok := raw.number(ProjectAttachmentCount); ok {
		p.AttachmentCount = count(n)
	}
	if n, ok := raw.number(ProjectTotalTaskCount); ok {
		p.TotalTaskCount = count(n)
	}
	if n, ok := raw.number(ProjectCompletedTaskCount); ok {
		p.CompletedTaskCount = count(n)
	}
	if n, ok := raw.number(ProjectProgression); ok {
		p.ProgressionPercent = math.Min(math.Max(n, 0), 100)
	}
	if n, ok := raw.number(ProjectDaysLeft); ok {
		p.DaysLeft = whole(n)
	}
	if b, ok := raw.flag(ProjectFavorite); ok {
		p.IsFavorite = b
	}
	if l, ok := raw.list(ProjectMembers); ok {
		p.Members = normalizeMembers(l)
	}

	return p
}

// Document is the canonical persisted form. The internal id is owned by
// the store and is not part of it.
func (p Project) Document() RawRecord {
	doc := RawRecord{KeyID: p.ID}
	doc[ProjectName.Canonical()] = p.Name
	doc[ProjectDescription.Canonical()] = p.Description
	doc[ProjectCategory.Canonical()] = p.Category
	doc[ProjectAttachmentCount.Canonical()] = p.AttachmentCount
	doc[ProjectTotalTaskCount.Canonical()] = p.TotalTaskCount
	doc[ProjectCompletedTaskCount.Canonical()] = p.CompletedTaskCount
	doc[ProjectProgression.Canonical()] = p.ProgressionPercent
	doc[ProjectDaysLeft.Canonical()] = p.DaysLeft
	doc[ProjectFavorite.Canonical()] = p.IsFavorite
	doc[ProjectMembers.Canonical()] = membersToRaw(p.Members)
	if !p.CreatedAt.IsZero() {
		doc[KeyCreatedAt] = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		doc[KeyUpdatedAt] = p.UpdatedAt
	}
	return doc
}

// ToRaw is Document plus the internal id, so that
// NormalizeProject(p.ToRaw()) == p.
func (p Project) ToRaw() RawRecord {
	doc := p.Document()
	if p.InternalID != "" {
		doc[KeyInternalID] = p.InternalID
	}
	return doc
}

// ProjectChanges returns the canonical value of every field patch names and
// the legacy spellings of those fields, which the write must remove. Fields
// the patch does not name are left out of both.
func ProjectChanges(patch RawRecord) (set RawRecord, unset []string) {
	doc := NormalizeProject(patch).Document()
	set = RawRecord{}
	for _, field := range projectFields {
		if !patch.Has(field...) {
			continue
		}
		set[field.Canonical()] = doc[field.Canonical()]
		unset = append(unset, field.Legacy()...)
	}
	return set, unset
}

func resolveID(raw RawRecord) string {
	if id, ok := ToText(raw[KeyID]); ok {
		return id
	}
	if id, ok := ToText(raw[KeyInternalID]); ok {
		return id
	}
	// malformed legacy data only; creation always assigns an id
	return uuid.NewString()
}

func count(n float64) int {
	if n < 0 {
		return 0
	}
	return whole(n)
}

// whole truncates n toward zero, saturating at ±MaxWholeNumber.
func whole(n float64) int {
	n = math.Min(math.Max(n, -MaxWholeNumber), MaxWholeNumber)
	return int(math.Trunc(n))
}
