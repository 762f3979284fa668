package roster

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// SnapshotVersion is the document version written by EncodeSnapshot.
const SnapshotVersion = 1

var ErrUnsupportedSnapshot = errors.New("unsupported roster snapshot")

type snapshotDocument struct {
	Version int            `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Teams   []teamDocument `json:"teams"`
}

// teamDocument uses the camelCase keys of previously stored rosters.
type teamDocument struct {
	ID          flexibleID `json:"id"`
	Name        string     `json:"name"`
	PlayerCount int        `json:"playerCount"`
	Region      string     `json:"region"`
	Country     string     `json:"country"`
	Players     []int64    `json:"players"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// flexibleID accepts both string ids and the numeric ids of older clients.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		*f = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
		return fmt.Errorf("team id must be a string or number: %s", raw)
	}
	*f = flexibleID(string(raw))
	return nil
}

// EncodeSnapshot serialises the whole collection.
func EncodeSnapshot(teams []Team, savedAt time.Time) ([]byte, error) {
	doc := snapshotDocument{
		Version: SnapshotVersion,
		SavedAt: savedAt.UTC(),
		Teams:   make([]teamDocument, 0, len(teams)),
	}
	for _, item := range teams {
		doc.Teams = append(doc.Teams, toTeamDocument(item))
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode roster snapshot: %w", err)
	}

	return bytes.Clone(bytes.TrimSpace(buf.B)), nil
}

// DecodeSnapshot parses a versioned document or a bare JSON array of teams.
// An empty payload decodes to an empty collection.
func DecodeSnapshot(payload []byte) ([]Team, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || string(payload) == "null" {
		return []Team{}, nil
	}

	var docs []teamDocument
	switch payload[0] {
	case '[':
		if err := sonic.Unmarshal(payload, &docs); err != nil {
			return nil, fmt.Errorf("decode roster array: %w", err)
		}
	case '{':
		var doc snapshotDocument
		if err := sonic.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode roster snapshot: %w", err)
		}
		if doc.Version > SnapshotVersion {
			return nil, fmt.Errorf("%w: version=%d", ErrUnsupportedSnapshot, doc.Version)
		}
		docs = doc.Teams
	default:
		return nil, fmt.Errorf("%w: unexpected leading byte %q", ErrUnsupportedSnapshot, payload[0])
	}

	teams := make([]Team, 0, len(docs))
	for _, item := range docs {
		teams = append(teams, fromTeamDocument(item))
	}

	return teams, nil
}

func toTeamDocument(t Team) teamDocument {
	doc := teamDocument{
		ID:          flexibleID(t.ID),
		Name:        t.Name,
		PlayerCount: t.PlayerCount,
		Region:      t.Region,
		Country:     t.Country,
		Players:     append([]int64{}, t.Players...),
	}
	if !t.CreatedAt.IsZero() {
		createdAt := t.CreatedAt.UTC()
		doc.CreatedAt = &createdAt
	}
	if !t.UpdatedAt.IsZero() {
		updatedAt := t.UpdatedAt.UTC()
		doc.UpdatedAt = &updatedAt
	}
	return doc
}

func fromTeamDocument(doc teamDocument) Team {
	t := Team{
		ID:          strings.TrimSpace(string(doc.ID)),
		Name:        doc.Name,
		PlayerCount: doc.PlayerCount,
		Region:      doc.Region,
		Country:     doc.Country,
		Players:     append([]int64{}, doc.Players...),
	}
	if doc.CreatedAt != nil {
		t.CreatedAt = doc.CreatedAt.UTC()
	}
	if doc.UpdatedAt != nil {
		t.UpdatedAt = doc.UpdatedAt.UTC()
	}
	return t
}
