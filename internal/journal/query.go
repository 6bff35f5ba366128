package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types
// Counts is the row count per journal table.
type Counts struct {
	Decisions     int
	Interventions int
	Rewards       int
	Responses     int
}

// RewardRow is one journaled reward.
type RewardRow struct {
	ID             string
	Kind           string
	Amount         int
	AchievementRef string
	Reason         string
	Priority       string
	CreatedAt      time.Time
}

// InterventionStat aggregates responses for one intervention type.
type InterventionStat struct {
	TypeID         string
	Delivered      int
	Engaged        int
	Dismissed      int
	Ignored        int
	LastMultiplier float64
}
// #endregion types

// #region counts
// Counts returns how many rows each table holds.
func (s *Store) Counts() (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"decisions", &c.Decisions},
		{"interventions", &c.Interventions},
		{"rewards", &c.Rewards},
		{"responses", &c.Responses},
	} {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + q.table).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}
// #endregion counts

// #region rewards
// RecentRewards returns up to limit rewards, newest first.
func (s *Store) RecentRewards(limit int) ([]RewardRow, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, amount, achievement_ref, reason, priority, created_at
		 FROM rewards ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	var out []RewardRow
	for rows.Next() {
		var r RewardRow
		var ref, reason sql.NullString
		var created string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Amount, &ref, &reason, &r.Priority, &created); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		r.AchievementRef = ref.String
		r.Reason = reason.String
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CoinTotal sums the coins granted by coin and bonus rewards.
func (s *Store) CoinTotal() (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(amount) FROM rewards WHERE kind IN ('coins', 'bonus')`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum coins: %w", err)
	}
	return int(total.Int64), nil
}
// #endregion rewards

// #region interventions
// InterventionStats joins deliveries with responses per intervention type.
func (s *Store) InterventionStats() ([]InterventionStat, error) {
	rows, err := s.db.Query(`
		SELECT i.type_id,
		       COUNT(*) AS delivered,
		       (SELECT COUNT(*) FROM responses r WHERE r.type_id = i.type_id AND r.response = 'engaged_positively'),
		       (SELECT COUNT(*) FROM responses r WHERE r.type_id = i.type_id AND r.response = 'dismissed_quickly'),
		       (SELECT COUNT(*) FROM responses r WHERE r.type_id = i.type_id AND r.response = 'ignored'),
		       COALESCE((SELECT r.multiplier FROM responses r WHERE r.type_id = i.type_id
		                 ORDER BY r.created_at DESC, r.rowid DESC LIMIT 1), 1.0)
		FROM interventions i
		GROUP BY i.type_id
		ORDER BY i.type_id`)
	if err != nil {
		return nil, fmt.Errorf("query intervention stats: %w", err)
	}
	defer rows.Close()

	var out []InterventionStat
	for rows.Next() {
		var st InterventionStat
		if err := rows.Scan(&st.TypeID, &st.Delivered, &st.Engaged, &st.Dismissed, &st.Ignored, &st.LastMultiplier); err != nil {
			return nil, fmt.Errorf("scan intervention stat: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
// #endregion interventions
