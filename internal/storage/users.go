package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/gkai/internal/models"
)

// Имена ограничений уникальности из миграций.
const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"
)

const userColumns = `uid, email, username, password_hash, role, created_at, last_login`

// CreateUser сохраняет нового пользователя и его статистику в одной транзакции
// и возвращает ID пользователя.
func (s *Storage) CreateUser(ctx context.Context, user models.User, stats models.UserStats) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	achievements, err := json.Marshal(stats.Achievements)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	distribution, err := json.Marshal(stats.GuessDistribution)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newID string
	query := `INSERT INTO users (uid, email, username, password_hash, role, created_at, last_login)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err = tx.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.Username, user.PasswordHash, string(user.Role),
		user.CreatedAt, user.LastLogin).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}

	query = `INSERT INTO user_stats (user_uid, games_played, games_won, total_guesses, best_score,
			      current_streak, longest_streak, average_guesses, achievements, guess_distribution)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	if _, err = tx.ExecContext(ctx, query,
		newID, stats.GamesPlayed, stats.GamesWon, stats.TotalGuesses, stats.BestScore,
		stats.CurrentStreak, stats.LongestStreak, stats.AverageGuesses, achievements, distribution); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByLogin возвращает пользователя по email (без учёта регистра) или username.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = lower($1) OR username = $1
			  ORDER BY (email = lower($1)) DESC
			  LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, login))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmailOrUsername возвращает пользователя, у которого совпадает email или username.
// Совпадение по email имеет приоритет.
func (s *Storage) GetUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	const op = "storage.GetUserByEmailOrUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1 OR username = $2
			  ORDER BY (email = $1) DESC
			  LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его UID.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := uuid.Parse(userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLastLogin обновляет дату последнего входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.UpdateLastLogin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET last_login = $1
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, at, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// GetUserStats возвращает статистику пользователя.
func (s *Storage) GetUserStats(ctx context.Context, userUID string) (*models.UserStats, error) {
	const op = "storage.GetUserStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, games_played, games_won, total_guesses, best_score, current_streak,
			      longest_streak, average_guesses, last_played, achievements, guess_distribution
			  FROM user_stats
			  WHERE user_uid = $1`
	var (
		st                         models.UserStats
		bestScore                  sql.NullInt64
		lastPlayed                 sql.NullTime
		achievements, distribution []byte
	)
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&st.UserUID, &st.GamesPlayed, &st.GamesWon,
		&st.TotalGuesses, &bestScore, &st.CurrentStreak, &st.LongestStreak, &st.AverageGuesses,
		&lastPlayed, &achievements, &distribution)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrStatsNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if bestScore.Valid {
		v := int(bestScore.Int64)
		st.BestScore = &v
	}
	if lastPlayed.Valid {
		st.LastPlayed = &lastPlayed.Time
	}
	if err = json.Unmarshal(achievements, &st.Achievements); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(distribution, &st.GuessDistribution); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u         models.User
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = r
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// mapUniqueViolation переводит нарушение уникального индекса в доменную ошибку.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintUsersEmail:
		return ErrEmailTaken
	case constraintUsersUsername:
		return ErrUsernameTaken
	default:
		return err
	}
}
