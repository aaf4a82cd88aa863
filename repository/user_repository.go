package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"TuneVault/db"
	"TuneVault/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	EnsureSystemUser() (int64, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	DB *sql.DB
}

// NewMySQLUserRepository creates a new instance of mysqlUserRepository.
func NewMySQLUserRepository(database *sql.DB) UserRepository {
	return &mysqlUserRepository{DB: database}
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, is_admin) VALUES (?, ?, ?, ?)`
	res, err := r.DB.Exec(query, user.Username, user.Email, user.PasswordHash, user.IsAdmin)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute CreateUser: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUser: %w", err)
	}
	return id, nil
}

const userColumns = `id, username, email, password_hash, is_admin, created_at, updated_at`

func (r *mysqlUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

// EnsureSystemUser lazily creates the reserved system account that owns the
// featured playlist and returns its id. The unique email constraint makes
// concurrent ensures collapse to one row.
func (r *mysqlUserRepository) EnsureSystemUser() (int64, error) {
	_, err := r.DB.Exec(`INSERT IGNORE INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		"system", db.SystemUserEmail, "!") // unusable password hash, the account can never log in
	if err != nil {
		return 0, fmt.Errorf("failed to ensure system user: %w", err)
	}

	var id int64
	if err := r.DB.QueryRow(`SELECT id FROM users WHERE email = ?`, db.SystemUserEmail).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up system user: %w", err)
	}
	return id, nil
}
