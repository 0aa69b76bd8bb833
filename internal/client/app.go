package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/service"
	"github.com/MKhiriev/go-field-crypt/internal/store"
	"github.com/MKhiriev/go-field-crypt/models"
)

const (
	cmdSetup   = "setup"
	cmdRecover = "recover"
	cmdStatus  = "status"
	cmdMigrate = "migrate"
	cmdShow    = "show"
)

// App runs one fieldcrypt command.
type App struct {
	services *service.Services
	records  store.RecordRepository
	entities []models.EntitySpec
	prompt   PasswordPrompter
	out      io.Writer
	logger   *logger.Logger
}

// NewApp constructs an [App]. records and entities back the show command;
// entities must be the list the migration service was built with.
func NewApp(services *service.Services, records store.RecordRepository, entities []models.EntitySpec,
	prompt PasswordPrompter, out io.Writer, log *logger.Logger) (*App, error) {
	if services == nil || records == nil {
		return nil, ErrNilServices
	}
	if entities == nil {
		entities = models.DefaultEntities()
	}

	return &App{
		services: services,
		records:  records,
		entities: entities,
		prompt:   prompt,
		out:      out,
		logger:   log,
	}, nil
}

type statusOutput struct {
	UserID             string `json:"user_id"`
	PasswordConfigured bool   `json:"encryption_password_configured"`
}

type showOutput struct {
	Entity  string              `json:"entity"`
	Records []map[string]string `json:"records"`
}

// Run executes args as "<command> <user-id> [entity]". Secrets are dropped
// from memory before it returns, whatever the outcome.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) < 2 || args[1] == "" {
		return ErrUsage
	}
	command, userID := args[0], args[1]

	log := a.logger.GetChildLogger()
	log.Logger = log.With().Str("command", command).Str("user_id", userID).Logger()
	ctx = log.WithContext(ctx)

	defer func() {
		a.services.FieldService.Logout(userID)
		a.services.Keys.ClearCache("")
	}()

	switch command {
	case cmdSetup:
		return a.setup(ctx, userID)
	case cmdRecover:
		return a.recover(ctx, userID)
	case cmdStatus:
		return a.status(ctx, userID)
	case cmdMigrate:
		return a.migrate(ctx, userID)
	case cmdShow:
		if len(args) < 3 {
			return ErrUsage
		}
		return a.show(ctx, userID, args[2])
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (a *App) setup(ctx context.Context, userID string) error {
	configured, err := a.services.PasswordService.IsConfigured(ctx, userID)
	if err != nil {
		return err
	}
	if configured {
		return ErrPasswordAlreadyConfigured
	}

	password, err := a.prompt.ReadPassword("New encryption password: ")
	if err != nil {
		return err
	}
	confirm, err := a.prompt.ReadPassword("Repeat encryption password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	if err = a.services.PasswordService.Setup(ctx, userID, password); err != nil {
		return err
	}

	return a.print(statusOutput{UserID: userID, PasswordConfigured: true})
}

func (a *App) recover(ctx context.Context, userID string) error {
	ok, err := a.services.PasswordService.Recover(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrPasswordNotConfigured
	}

	return a.print(statusOutput{UserID: userID, PasswordConfigured: true})
}

func (a *App) status(ctx context.Context, userID string) error {
	configured, err := a.services.PasswordService.IsConfigured(ctx, userID)
	if err != nil {
		return err
	}

	return a.print(statusOutput{UserID: userID, PasswordConfigured: configured})
}

func (a *App) migrate(ctx context.Context, userID string) error {
	password, err := a.password(ctx, userID)
	if err != nil {
		return err
	}

	report, err := a.services.MigrationService.Migrate(ctx, userID, password)
	if printErr := a.print(report); printErr != nil {
		return errors.Join(err, printErr)
	}

	return err
}

func (a *App) show(ctx context.Context, userID, entityName string) error {
	var entity *models.EntitySpec
	for i := range a.entities {
		if a.entities[i].Name == entityName {
			entity = &a.entities[i]
			break
		}
	}
	if entity == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, entityName)
	}

	password, err := a.password(ctx, userID)
	if err != nil {
		return err
	}
	a.services.Session.SetPassword(password)

	records, err := a.records.ListRecords(ctx, *entity, userID)
	if err != nil {
		return err
	}

	out := showOutput{Entity: entity.Name, Records: make([]map[string]string, 0, len(records))}
	for _, record := range records {
		row := map[string]string{entity.IDColumn: record.ID}
		for field, value := range record.Fields {
			if value == nil {
				continue
			}
			plain, err := a.services.FieldService.DecryptField(ctx, userID, *value)
			if err != nil {
				return fmt.Errorf("record %s: %s: %w", record.ID, field, err)
			}
			row[field] = plain
		}
		out.Records = append(out.Records, row)
	}

	return a.print(out)
}

// password returns the stored password when one is configured and prompts
// for it otherwise.
func (a *App) password(ctx context.Context, userID string) (string, error) {
	ok, err := a.services.PasswordService.Recover(ctx, userID)
	if err != nil {
		return "", err
	}
	if ok {
		if password, set := a.services.Session.Password(); set {
			return password, nil
		}
	}

	return a.prompt.ReadPassword("Encryption password: ")
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
