package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/storage"
)

// ContactUser is a counterparty the subject has shared a personal expense
// with.
type ContactUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
	Type     string `json:"type"` // always "user"
}

// ContactGroup is a group the subject belongs to.
type ContactGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
	Type        string `json:"type"` // always "group"
}

// Contacts is the discovery listing: everyone the subject can split with.
type Contacts struct {
	Users  []ContactUser  `json:"users"`
	Groups []ContactGroup `json:"groups"`
}

// EmptyContacts returns the zero-valued default shape.
func EmptyContacts() Contacts {
	return Contacts{Users: []ContactUser{}, Groups: []ContactGroup{}}
}

// ContactsService derives the distinct counterparties and memberships
// visible to a subject. Purely a read-side projection; no balance math.
type ContactsService struct {
	reader  *storage.Reader
	timeout time.Duration
}

// NewContactsService creates a ContactsService reading through the given
// store.
func NewContactsService(store storage.Store, timeout time.Duration) *ContactsService {
	return &ContactsService{reader: storage.NewReader(store), timeout: timeout}
}

// GetContacts lists the subject's counterparties and groups. A nil subject
// or any internal fault yields the empty shape.
func (s *ContactsService) GetContacts(ctx context.Context, subject *models.User) Contacts {
	if subject == nil {
		return EmptyContacts()
	}

	contacts, err := s.computeContacts(ctx, subject)
	if err != nil {
		slog.Error("contact discovery failed, serving default", "user_id", subject.ID, "error", err)
		return EmptyContacts()
	}
	return contacts
}

func (s *ContactsService) computeContacts(ctx context.Context, subject *models.User) (Contacts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.counterpartyIDs(ctx, subject.ID)
	if err != nil {
		return Contacts{}, err
	}

	// Batched fetch; ids that no longer resolve are dropped.
	users, err := s.reader.GetUsersByIDs(ctx, ids)
	if err != nil {
		return Contacts{}, err
	}

	contacts := EmptyContacts()
	for _, u := range users {
		contacts.Users = append(contacts.Users, ContactUser{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			ImageURL: u.ImageURL,
			Type:     "user",
		})
	}
	sort.Slice(contacts.Users, func(i, j int) bool {
		if contacts.Users[i].Name != contacts.Users[j].Name {
			return contacts.Users[i].Name < contacts.Users[j].Name
		}
		return contacts.Users[i].ID < contacts.Users[j].ID
	})

	groups, err := s.reader.ListGroups(ctx)
	if err != nil {
		return Contacts{}, err
	}
	for _, g := range groups {
		if !g.HasMember(subject.ID) {
			continue
		}
		contacts.Groups = append(contacts.Groups, ContactGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.Members),
			Type:        "group",
		})
	}

	return contacts, nil
}

// counterpartyIDs returns the distinct union of payer and split
// participants across every personal expense touching the subject, minus
// the subject.
func (s *ContactsService) counterpartyIDs(ctx context.Context, subjectID string) ([]string, error) {
	personal, err := s.reader.Expenses(ctx, storage.ExpenseFilter{Scope: storage.ScopePersonal})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, e := range personal {
		if !e.Involves(subjectID) {
			continue
		}
		if e.PaidByUserID != subjectID {
			seen[e.PaidByUserID] = true
		}
		for _, split := range e.Splits {
			if split.UserID != subjectID {
				seen[split.UserID] = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}
