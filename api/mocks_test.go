package api

import (
	"context"
	"log/slog"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/registration"
)

var noopLogger = slog.New(slog.DiscardHandler)

var _ DB = &mockDB{}

type mockDB struct {
	GetCampFunc                    func(ctx context.Context, name string) (camps.Camp, error)
	GetCampsFunc                   func(ctx context.Context, limit int32, cursor *string) (camps.GetCampsResponse, error)
	CreateCampFunc                 func(ctx context.Context, camp camps.Camp) error
	AppendRegistrationFunc         func(ctx context.Context, reg registration.Registration) error
	CountRegistrationsFunc         func(ctx context.Context, campName string) (int, error)
	GetAllRegistrationsForCampFunc func(ctx context.Context, campName string, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error)
	ListSheetsFunc                 func(ctx context.Context) ([]string, error)
}

func (m *mockDB) GetCamp(ctx context.Context, name string) (camps.Camp, error) {
	if m.GetCampFunc != nil {
		return m.GetCampFunc(ctx, name)
	}
	return camps.Camp{Name: name}, nil
}

func (m *mockDB) GetCamps(ctx context.Context, limit int32, cursor *string) (camps.GetCampsResponse, error) {
	if m.GetCampsFunc != nil {
		return m.GetCampsFunc(ctx, limit, cursor)
	}
	return camps.GetCampsResponse{}, nil
}

func (m *mockDB) CreateCamp(ctx context.Context, camp camps.Camp) error {
	if m.CreateCampFunc != nil {
		return m.CreateCampFunc(ctx, camp)
	}
	return nil
}

func (m *mockDB) AppendRegistration(ctx context.Context, reg registration.Registration) error {
	if m.AppendRegistrationFunc != nil {
		return m.AppendRegistrationFunc(ctx, reg)
	}
	return nil
}

func (m *mockDB) CountRegistrations(ctx context.Context, campName string) (int, error) {
	if m.CountRegistrationsFunc != nil {
		return m.CountRegistrationsFunc(ctx, campName)
	}
	return 0, nil
}

func (m *mockDB) GetAllRegistrationsForCamp(ctx context.Context, campName string, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	if m.GetAllRegistrationsForCampFunc != nil {
		return m.GetAllRegistrationsForCampFunc(ctx, campName, limit, cursor)
	}
	return registration.GetAllRegistrationsResponse{}, nil
}

func (m *mockDB) ListSheets(ctx context.Context) ([]string, error) {
	if m.ListSheetsFunc != nil {
		return m.ListSheetsFunc(ctx)
	}
	return nil, nil
}

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	return nil
}
