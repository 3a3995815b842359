package club

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrEmptyOptionCode = errors.New("option code cannot be empty")
)

// DefaultStatus is shown when a record carries no status label.
const DefaultStatus = "Registered"

// recordNamespace scopes the name-based UUIDs handed to club records.
var recordNamespace = uuid.MustParse("7d1c3b0e-5f0a-4c4e-9a53-2b8f4f0e6a11")

// Option is a selectable {code, description} pair (terms and activities).
type Option struct {
	Code        string `json:"code"`
	Description string `json:"desc"`
}

// UnmarshalJSON accepts both "desc" and "description" for the label.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code        string `json:"code"`
		Desc        string `json:"desc"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Code = raw.Code
	o.Description = raw.Desc
	if o.Description == "" {
		o.Description = raw.Description
	}
	return nil
}

// Record is one registered club as delivered by the catalog.
// The payload has no numeric key, so ID is assigned locally by AssignIDs.
type Record struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"stvactcDesc"`
	Status      string `json:"description,omitempty"`
}

// StatusLabel returns the record status, falling back to DefaultStatus.
func (r Record) StatusLabel() string {
	if strings.TrimSpace(r.Status) == "" {
		return DefaultStatus
	}
	return r.Status
}

// Catalog is the club payload returned by one catalog fetch.
// It is replaced wholesale on every refresh and never mutated in place.
type Catalog struct {
	StudentClubs []Record `json:"studentClubs"`
	Terms        []Option `json:"Terms"`
	ActivityList []Option `json:"activityList"`
	CurrentTerm  string   `json:"currentTerm"`
	BannerID     string   `json:"bannerId"`
}

// Validate checks the selectable options carry codes a registration can be built from.
// Missing banner IDs and club descriptions do not fail the catalog: the list still
// renders, and registration rejects an empty banner ID on its own.
// PRE: Catalog struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Catalog) Validate() error {
	for _, o := range c.Terms {
		if strings.TrimSpace(o.Code) == "" {
			return fmt.Errorf("term: %w", ErrEmptyOptionCode)
		}
	}
	for _, o := range c.ActivityList {
		if strings.TrimSpace(o.Code) == "" {
			return fmt.Errorf("activity: %w", ErrEmptyOptionCode)
		}
	}
	return nil
}

// IncompleteRecords returns the positions of student clubs without a description.
func (c *Catalog) IncompleteRecords() []int {
	var idx []int
	for i, r := range c.StudentClubs {
		if strings.TrimSpace(r.Description) == "" {
			idx = append(idx, i)
		}
	}
	return idx
}

// TermLabel returns the description of the current term, or its code when
// the term list does not describe it.
// INVARIANT: Catalog fields are not mutated
func (c *Catalog) TermLabel() string {
	for _, t := range c.Terms {
		if t.Code == c.CurrentTerm && t.Description != "" {
			return t.Description
		}
	}
	return c.CurrentTerm
}

// HasTerm reports whether code is one of the catalog's terms.
func (c *Catalog) HasTerm(code string) bool {
	return hasCode(c.Terms, code)
}

// HasActivity reports whether code is one of the catalog's selectable clubs.
func (c *Catalog) HasActivity(code string) bool {
	return hasCode(c.ActivityList, code)
}

// AssignIDs gives every student club a stable opaque ID derived from its
// position and description. Records that already have an ID keep it.
// PRE: none
// POST: Every record in StudentClubs has a non-empty ID
func (c *Catalog) AssignIDs() {
	for i := range c.StudentClubs {
		if c.StudentClubs[i].ID != "" {
			continue
		}
		c.StudentClubs[i].ID = RecordID(i, c.StudentClubs[i].Description)
	}
}

// RecordID derives the ID AssignIDs would give a record at position i.
func RecordID(i int, description string) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%d:%s", i, description))).String()
}

func hasCode(options []Option, code string) bool {
	if code == "" {
		return false
	}
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}
