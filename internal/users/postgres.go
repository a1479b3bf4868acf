package users

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

type userModel struct {
	ID           string    `gorm:"size:36;primaryKey"`
	Name         string    `gorm:"size:64;not null"`
	Username     string    `gorm:"size:36;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:72;not null"`
	Token        string    `gorm:"size:64;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

type meetingModel struct {
	ID       string    `gorm:"size:36;primaryKey"`
	UserID   string    `gorm:"size:36;index;not null"`
	Code     string    `gorm:"size:128;not null"`
	JoinedAt time.Time `gorm:"not null"`
}

func (meetingModel) TableName() string { return "meetings" }

// PostgresRepository persists accounts and meeting history through gorm.
type PostgresRepository struct {
	db *gorm.DB
}

// OpenPostgres connects, migrates the two tables and configures the pool.
func OpenPostgres(dsn string) (*PostgresRepository, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&userModel{}, &meetingModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return &PostgresRepository{db: db}, nil
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(toModel(user)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "token = ? AND token <> ''", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *PostgresRepository) SetToken(ctx context.Context, id domain.UserID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", string(id)).Update("token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) AddMeeting(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := meetingModel{
		ID:       meeting.ID,
		UserID:   string(meeting.UserID),
		Code:     meeting.Code,
		JoinedAt: meeting.JoinedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *PostgresRepository) MeetingsOf(ctx context.Context, id domain.UserID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []meetingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", string(id)).
		Order("joined_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Meeting, 0, len(rows))
	for i := range rows {
		out = append(out, &domain.Meeting{
			ID:       rows[i].ID,
			UserID:   domain.UserID(rows[i].UserID),
			Code:     rows[i].Code,
			JoinedAt: rows[i].JoinedAt.UTC(),
		})
	}
	return out, nil
}

func toModel(u *domain.User) *userModel {
	return &userModel{
		ID:           string(u.ID),
		Name:         u.Name,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Token:        u.Token,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func toDomain(m *userModel) *domain.User {
	return &domain.User{
		ID:           domain.UserID(m.ID),
		Name:         m.Name,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Token:        m.Token,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
