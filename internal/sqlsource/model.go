package sqlsource

import (
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-catalog-browser/catalog"
)

// tagSeparator wraps and joins tags in the tags column, e.g. ",ai,editor,".
const tagSeparator = ","

// Model is the resources table row.
type Model struct {
	bun.BaseModel `bun:"table:resources,alias:r"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	URL         string    `bun:"url,notnull"`
	Description string    `bun:"description"`
	Category    string    `bun:"category,notnull"`
	Tags        string    `bun:"tags"`
	Rating      float64   `bun:"rating"`
	Reviews     int       `bun:"reviews"`
	Cover       string    `bun:"cover"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Handlers returns the go-repository-bun handlers for Model.
func Handlers() repository.ModelHandlers[*Model] {
	return repository.ModelHandlers[*Model]{
		NewRecord: func() *Model {
			return &Model{}
		},
		GetID: func(m *Model) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Model, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "url"
		},
	}
}

func encodeTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !strings.Contains(t, tagSeparator) {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return tagSeparator + strings.Join(clean, tagSeparator) + tagSeparator
}

func decodeTags(s string) []string {
	s = strings.Trim(s, tagSeparator)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, tagSeparator)
}

func toResource(m *Model) catalog.Resource {
	return catalog.Resource{
		ID:          m.ID.String(),
		Title:       m.Title,
		URL:         m.URL,
		Description: m.Description,
		Category:    m.Category,
		Tags:        decodeTags(m.Tags),
		Rating:      m.Rating,
		Reviews:     m.Reviews,
		Cover:       m.Cover,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toResources(models []*Model) []catalog.Resource {
	out := make([]catalog.Resource, len(models))
	for i, m := range models {
		out[i] = toResource(m)
	}
	return out
}

// apply copies the writable fields of r onto m.
func (m *Model) apply(r catalog.Resource) {
	m.Title = r.Title
	m.URL = r.URL
	m.Description = r.Description
	m.Category = r.Category
	m.Tags = encodeTags(r.Tags)
	m.Rating = r.Rating
	m.Reviews = r.Reviews
	m.Cover = r.Cover
}
