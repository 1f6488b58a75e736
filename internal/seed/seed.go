// Package seed загружает демо-юзеров и их начальные балансы из YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/fsdevblog/groph-wallet/internal/worker"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const OpeningBalanceDescription = "Opening balance"

type File struct {
	Users []User `yaml:"users"`
}

type User struct {
	Name           string          `yaml:"name"`
	Email          string          `yaml:"email"`
	Phone          string          `yaml:"phone"`
	OpeningBalance decimal.Decimal `yaml:"opening_balance"`
	Transactions   []Transaction   `yaml:"transactions"`
}

type Transaction struct {
	Amount      decimal.Decimal `yaml:"amount"`
	Description string          `yaml:"description"`
}

// Load разбирает YAML из r.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

type Servicer interface {
	CreateUser(ctx context.Context, args service.CreateUserArgs) (*domain.User, error)
	ListUsers(ctx context.Context, search string) ([]domain.User, error)
}

type Batcher interface {
	Apply(ctx context.Context, items []service.ApplyAdjustmentArgs) []worker.Result
}

type Seeder struct {
	svs   Servicer
	batch Batcher
	l     *logrus.Entry
}

func NewSeeder(svs Servicer, batch Batcher, l *logrus.Logger) *Seeder {
	return &Seeder{
		svs:   svs,
		batch: batch,
		l:     l.WithField("component", "seed"),
	}
}

// Run создает юзеров и записывает их начальные балансы и транзакции как обычные корректировки.
//
// Алгоритм работы:
//  1. Создает юзеров. Если email уже занят, берет существующего юзера.
//  2. Применяет корректировки фазами: в фазе 0 - начальные балансы, в фазе k - k-я транзакция каждого юзера.
//     Внутри фазы у юзера не больше одной корректировки, поэтому порядок транзакций юзера сохраняется.
//  3. Каждая корректировка несет ключ идемпотентности, так что повторный запуск ничего не дублирует.
func (s *Seeder) Run(ctx context.Context, f *File) error {
	phases := make([][]service.ApplyAdjustmentArgs, 1)
	for _, u := range f.Users {
		user, err := s.ensureUser(ctx, u)
		if err != nil {
			return err
		}

		if !u.OpeningBalance.IsZero() {
			phases[0] = append(phases[0], service.ApplyAdjustmentArgs{
				UserID:         user.ID,
				Amount:         u.OpeningBalance,
				Description:    OpeningBalanceDescription,
				IdempotencyKey: seedKey(u.Email, "opening"),
			})
		}

		for i, t := range u.Transactions {
			if len(phases) < i+2 {
				phases = append(phases, nil)
			}
			phases[i+1] = append(phases[i+1], service.ApplyAdjustmentArgs{
				UserID:         user.ID,
				Amount:         t.Amount,
				Description:    t.Description,
				IdempotencyKey: seedKey(u.Email, fmt.Sprintf("tx-%d", i)),
			})
		}
	}

	var applied int
	for _, items := range phases {
		for _, result := range s.batch.Apply(ctx, items) {
			if result.Error != nil {
				return fmt.Errorf("seeding adjustment for user %s: %w", items[result.Index].UserID, result.Error)
			}
			applied++
		}
	}

	s.l.WithFields(logrus.Fields{
		"users":       len(f.Users),
		"adjustments": applied,
	}).Info("seed applied")
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, u User) (*domain.User, error) {
	user, err := s.svs.CreateUser(ctx, service.CreateUserArgs{
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrDuplicateKey) {
		return nil, fmt.Errorf("seeding user %s: %w", u.Email, err)
	}

	users, listErr := s.svs.ListUsers(ctx, u.Email)
	if listErr != nil {
		return nil, fmt.Errorf("seeding user %s: %w", u.Email, listErr)
	}
	for _, existing := range users {
		if strings.EqualFold(existing.Email, strings.TrimSpace(u.Email)) {
			return &existing, nil
		}
	}
	return nil, fmt.Errorf("seeding user %s: %w", u.Email, domain.ErrUserNotFound)
}

func seedKey(email string, suffix string) string {
	return "seed:" + strings.ToLower(strings.TrimSpace(email)) + ":" + suffix
}
