package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY,
	state       TEXT NOT NULL,
	confidence  REAL NOT NULL,
	intervene   INTEGER NOT NULL,
	type_id     TEXT,
	reason      TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rewards (
	id              TEXT PRIMARY KEY,
	kind            TEXT NOT NULL,
	amount          INTEGER NOT NULL,
	achievement_ref TEXT,
	reason          TEXT,
	priority        TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS interventions (
	id           TEXT PRIMARY KEY,
	type_id      TEXT NOT NULL,
	category     TEXT NOT NULL,
	urgency      TEXT NOT NULL,
	message_slot TEXT NOT NULL,
	tone         TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS responses (
	id          TEXT PRIMARY KEY,
	type_id     TEXT NOT NULL,
	response    TEXT NOT NULL,
	multiplier  REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rewards_created ON rewards(created_at);
CREATE INDEX IF NOT EXISTS idx_responses_type ON responses(type_id, created_at);
`
// #endregion schema

// #region store-struct
// Store is the SQLite journal of what the companion decided and granted.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// Open opens (or creates) the journal at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion constructor

// #region insert
// InsertDecision journals one decision.
func (s *Store) InsertDecision(at time.Time, d decision.Decision) error {
	typeID := ""
	if d.Type != nil {
		typeID = d.Type.ID
	}
	_, err := s.db.Exec(
		`INSERT INTO decisions (id, state, confidence, intervene, type_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), string(d.State), d.Confidence, boolInt(d.Intervene),
		nullIfEmpty(typeID), nullIfEmpty(d.Reason), stamp(at),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// InsertReward journals a granted reward. The event id is reused when present.
func (s *Store) InsertReward(at time.Time, ev reward.Event) error {
	id := ev.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO rewards (id, kind, amount, achievement_ref, reason, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(ev.Kind), ev.Amount, nullIfEmpty(ev.AchievementRef),
		nullIfEmpty(ev.Reason), string(ev.Priority), stamp(at),
	)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

// InsertIntervention journals a delivered intervention request.
func (s *Store) InsertIntervention(at time.Time, req decision.InterventionRequest) error {
	_, err := s.db.Exec(
		`INSERT INTO interventions (id, type_id, category, urgency, message_slot, tone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), req.TypeID, string(req.Category), string(req.Urgency),
		req.MessageSlot, string(req.Tone), stamp(at),
	)
	if err != nil {
		return fmt.Errorf("insert intervention: %w", err)
	}
	return nil
}

// InsertResponse journals a user response and the multiplier it produced.
func (s *Store) InsertResponse(at time.Time, typeID string, resp ledger.UserResponse, multiplier float64) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (id, type_id, response, multiplier, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), typeID, string(resp), multiplier, stamp(at),
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}
// #endregion insert

// #region helpers
// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
