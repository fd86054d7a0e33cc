package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"candidate-tracker/internal/domain"
)

// COALESCE keeps rows written before the optional columns existed readable
// and makes date_creation come back as plain text whatever its declared type.
const candidateColumns = `
  id, nom_complet, poste_demande, email,
  COALESCE(telephone, ''), date_candidature, statut,
  COALESCE(priorite, ''), COALESCE(notes, ''),
  COALESCE(cv_path, ''), COALESCE(attachments, ''),
  COALESCE(photo_path, ''), COALESCE(source, ''),
  COALESCE(date_creation, '')`

const createdAtLayout = "2006-01-02 15:04:05"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(r rowScanner) (domain.Candidate, error) {
	var (
		c           domain.Candidate
		status      string
		priority    string
		attachments string
		createdAt   string
	)
	if err := r.Scan(
		&c.ID,
		&c.FullName,
		&c.Position,
		&c.Email,
		&c.Phone,
		&c.AppliedOn,
		&status,
		&priority,
		&c.Notes,
		&c.ResumePath,
		&attachments,
		&c.PhotoPath,
		&c.Source,
		&createdAt,
	); err != nil {
		return domain.Candidate{}, err
	}
	// Stored values outside the closed sets are read back verbatim.
	c.Status = domain.Status(status)
	c.Priority = domain.Priority(priority)
	c.Attachments = domain.SplitAttachments(attachments)
	c.CreatedAt = parseCreatedAt(createdAt)
	return c, nil
}

func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation(createdAtLayout, s, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func checkEnums(st domain.Status, p domain.Priority) error {
	if !st.Valid() {
		return fmt.Errorf("%w %q", domain.ErrInvalidStatus, st)
	}
	if !p.Valid() {
		return fmt.Errorf("%w %q", domain.ErrInvalidPriority, p)
	}
	return nil
}

// AddCandidate inserts c as given and returns it with its assigned ID and
// creation timestamp. No field is normalized; format checks belong to the
// caller. An existing email yields ErrDuplicateEmail.
func (s *Store) AddCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	if err := checkEnums(c.Status, c.Priority); err != nil {
		return domain.Candidate{}, err
	}

	var out domain.Candidate
	err := s.withDB(ctx, "add candidate", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
INSERT INTO candidates
  (nom_complet, poste_demande, email, telephone, date_candidature,
   statut, priorite, notes, cv_path, attachments, photo_path, source)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			c.FullName, c.Position, c.Email, c.Phone, c.AppliedOn,
			string(c.Status), string(c.Priority), c.Notes,
			c.ResumePath, domain.JoinAttachments(c.Attachments), c.PhotoPath, c.Source,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out, err = getCandidate(ctx, db, id)
		return err
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	s.log.WithField("id", out.ID).Debug("candidate added")
	return out, nil
}

// ListCandidates returns every candidate, newest ID first.
func (s *Store) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return s.SearchCandidates(ctx, domain.Filter{})
}

// GetCandidate returns the candidate with the given ID, or ErrNotFound.
func (s *Store) GetCandidate(ctx context.Context, id int64) (domain.Candidate, error) {
	var out domain.Candidate
	err := s.withDB(ctx, "get candidate", func(db *sql.DB) error {
		var err error
		out, err = getCandidate(ctx, db, id)
		return err
	})
	return out, err
}

func getCandidate(ctx context.Context, db *sql.DB, id int64) (domain.Candidate, error) {
	row := db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ? LIMIT 1;`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Candidate{}, ErrNotFound
	}
	return c, err
}

// SearchCandidates returns the candidates matching every non-empty field of
// f, newest ID first. Name, position and email match case-insensitive
// substrings; status, priority and source must match exactly.
func (s *Store) SearchCandidates(ctx context.Context, f domain.Filter) ([]domain.Candidate, error) {
	where, args, err := buildFilter(f)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id DESC;`

	var out []domain.Candidate
	err = s.withDB(ctx, "search candidates", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCandidate(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildFilter(f domain.Filter) (where []string, args []any, err error) {
	like := func(col, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		where = append(where, foldFunc+`(`+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(fold(v))+"%")
	}
	like("nom_complet", f.Name)
	like("poste_demande", f.Position)
	like("email", f.Email)

	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, nil, fmt.Errorf("%w %q", domain.ErrInvalidStatus, f.Status)
		}
		where = append(where, `statut = ?`)
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		if !f.Priority.Valid() {
			return nil, nil, fmt.Errorf("%w %q", domain.ErrInvalidPriority, f.Priority)
		}
		where = append(where, `priorite = ?`)
		args = append(args, string(f.Priority))
	}
	if f.Source != "" {
		where = append(where, `source = ?`)
		args = append(args, f.Source)
	}
	return where, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// UpdateStatus changes one candidate's status in place.
func (s *Store) UpdateStatus(ctx context.Context, id int64, st domain.Status) error {
	if !st.Valid() {
		return fmt.Errorf("%w %q", domain.ErrInvalidStatus, st)
	}
	return s.execOne(ctx, "update status", `UPDATE candidates SET statut = ? WHERE id = ?;`, string(st), id)
}

// UpdatePriority changes one candidate's priority in place.
func (s *Store) UpdatePriority(ctx context.Context, id int64, p domain.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w %q", domain.ErrInvalidPriority, p)
	}
	return s.execOne(ctx, "update priority", `UPDATE candidates SET priorite = ? WHERE id = ?;`, string(p), id)
}

// UpdateCandidate overwrites every editable field of the candidate with
// c.ID. The creation timestamp is left alone.
func (s *Store) UpdateCandidate(ctx context.Context, c domain.Candidate) error {
	if err := checkEnums(c.Status, c.Priority); err != nil {
		return err
	}
	return s.execOne(ctx, "update candidate", `
UPDATE candidates
SET nom_complet = ?, poste_demande = ?, email = ?, telephone = ?,
    date_candidature = ?, statut = ?, priorite = ?, notes = ?,
    cv_path = ?, attachments = ?, photo_path = ?, source = ?
WHERE id = ?;`,
		c.FullName, c.Position, c.Email, c.Phone,
		c.AppliedOn, string(c.Status), string(c.Priority), c.Notes,
		c.ResumePath, domain.JoinAttachments(c.Attachments), c.PhotoPath, c.Source,
		c.ID,
	)
}

// UpdateFiles rewrites only the file references of one candidate. The
// other columns, including any legacy status or priority, are untouched.
func (s *Store) UpdateFiles(ctx context.Context, id int64, resumePath string, attachments []string, photoPath string) error {
	return s.execOne(ctx, "update files", `
UPDATE candidates SET cv_path = ?, attachments = ?, photo_path = ? WHERE id = ?;`,
		resumePath, domain.JoinAttachments(attachments), photoPath, id,
	)
}

// DeleteCandidate removes the record. Files it references stay on disk.
func (s *Store) DeleteCandidate(ctx context.Context, id int64) error {
	return s.execOne(ctx, "delete candidate", `DELETE FROM candidates WHERE id = ?;`, id)
}

// execOne runs a statement that must touch exactly one candidate row.
func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	return s.withDB(ctx, op, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Stats counts candidates overall, per known status, and created during the
// current calendar month (UTC). Nothing is cached.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := s.withDB(ctx, "stats", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
SELECT COALESCE(statut, ''), COUNT(*)
FROM candidates
GROUP BY statut;`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			st.Total += n
			switch domain.Status(status) {
			case domain.StatusPending:
				st.Pending += n
			case domain.StatusInterview:
				st.Interview += n
			case domain.StatusAccepted:
				st.Accepted += n
			case domain.StatusRejected:
				st.Rejected += n
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}

		month := s.now().UTC().Format("2006-01")
		return db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM candidates
WHERE strftime('%Y-%m', date_creation) = ?;`, month).Scan(&st.ThisMonth)
	})
	return st, err
}
