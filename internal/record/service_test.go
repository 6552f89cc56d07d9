package record_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params record.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *record.MockRepository)
		verify    func(t *testing.T, r *record.Record)
		wantErr   error
	}

	tenant := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: record.CreateParams{
					TenantID:     tenant,
					Kind:         record.KindExpense,
					Reference:    " FAC-5001 ",
					Amount:       450000,
					Counterparty: "Textiles Premium S.A.",
					IssueDate:    time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().
					CreateRecord(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *record.Record) error {
						r.ID = uuid.New()
						r.Version = 1
						return nil
					})
			},
			verify: func(t *testing.T, r *record.Record) {
				assert.Equal(t, record.StatusPending, r.Status)
				assert.Equal(t, "FAC-5001", r.Reference)
				assert.Equal(t, tenant, r.TenantID)
			},
		},
		{
			name: "PayrollNet",
			args: args{
				params: record.CreateParams{
					Kind:         record.KindPayroll,
					Counterparty: "Lorena Gómez",
					Payroll: &record.PayrollBreakdown{
						BaseSalary:  1800000,
						Commissions: 1350000,
						Bonuses:     200000,
						Deductions:  50000,
					},
				},
			},
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, r *record.Record) {
				assert.Equal(t, int64(3300000), r.Amount)
				assert.False(t, r.IssueDate.IsZero())
			},
		},
		{
			name:    "UnknownKind",
			args:    args{params: record.CreateParams{Kind: "invoice", Counterparty: "x"}},
			wantErr: record.ErrInvalid,
		},
		{
			name:    "MissingCounterparty",
			args:    args{params: record.CreateParams{Kind: record.KindPayment, Amount: 10}},
			wantErr: record.ErrInvalid,
		},
		{
			name: "ForeignStatus",
			args: args{params: record.CreateParams{
				Kind: record.KindQuote, Status: record.StatusPaid, Counterparty: "Inversiones Global",
			}},
			wantErr: record.ErrInvalid,
		},
		{
			name: "RepoError",
			args: args{params: record.CreateParams{Kind: record.KindPayment, Counterparty: "x"}},
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := record.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := record.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, record.ErrInvalid) {
					assert.ErrorIs(t, err, record.ErrInvalid)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			tt.verify(t, got)
		})
	}
}

func TestService_Transition(t *testing.T) {
	tenant := uuid.New()
	id := uuid.New()

	current := func() *record.Record {
		return &record.Record{
			ID: id, TenantID: tenant, Kind: record.KindPayment, Status: record.StatusPending, Amount: 30000, Version: 3,
		}
	}

	type testCase struct {
		name      string
		to        record.Status
		version   int64
		setupMock func(m *record.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "Success",
			to:      record.StatusPaid,
			version: 3,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(current(), nil)
				m.EXPECT().
					UpdateStatus(gomock.Any(), tenant, id, record.StatusPaid, int64(3)).
					DoAndReturn(func(_ context.Context, _, _ uuid.UUID, s record.Status, v int64) (*record.Record, error) {
						r := current()
						r.Status = s
						r.Version = v + 1
						return r, nil
					})
			},
		},
		{
			name:    "UnversionedWriteUsesStoredVersion",
			to:      record.StatusProcessing,
			version: 0,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(current(), nil)
				m.EXPECT().UpdateStatus(gomock.Any(), tenant, id, record.StatusProcessing, int64(3)).Return(current(), nil)
			},
		},
		{
			name:    "StaleVersion",
			to:      record.StatusPaid,
			version: 2,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(current(), nil)
			},
			wantErr: record.ErrConflict,
		},
		{
			name: "InvalidEdge",
			to:   record.StatusDraft,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(current(), nil)
			},
			wantErr: record.ErrInvalidTransition,
		},
		{
			name: "NotFound",
			to:   record.StatusPaid,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(nil, record.ErrNotFound)
			},
			wantErr: record.ErrNotFound,
		},
		{
			name: "OtherKind",
			to:   record.StatusSent,
			setupMock: func(m *record.MockRepository) {
				r := current()
				r.Kind = record.KindQuote
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(r, nil)
			},
			wantErr: record.ErrNotFound,
		},
		{
			name: "LostRace",
			to:   record.StatusPaid,
			setupMock: func(m *record.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), tenant, id).Return(current(), nil)
				m.EXPECT().UpdateStatus(gomock.Any(), tenant, id, record.StatusPaid, int64(3)).Return(nil, record.ErrConflict)
			},
			wantErr: record.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := record.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := record.NewService(repo)
			got, err := svc.Transition(context.Background(), tenant, record.KindPayment, id, tt.to, tt.version)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tenant := uuid.New()
	repo := record.NewMockRepository(ctrl)
	repo.EXPECT().
		ListRecords(gomock.Any(), record.ListFilter{TenantID: tenant, Kind: record.KindReceivable}).
		Return([]*record.Record{
			{Kind: record.KindReceivable, Status: record.StatusPending, Amount: 45000000},
			{Kind: record.KindReceivable, Status: record.StatusCollected, Amount: 5000000},
		}, nil)

	kpis, err := record.NewService(repo).Summary(context.Background(), tenant, record.KindReceivable)
	require.NoError(t, err)

	pending, ok := record.Find(kpis, "pending_total")
	require.True(t, ok)
	assert.Equal(t, "450000", pending.Value.String())

	rate, ok := record.Find(kpis, "collection_rate")
	require.True(t, ok)
	assert.Equal(t, "50", rate.Value.String())
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tenant := uuid.New()
	repo := record.NewMockRepository(ctrl)
	itx := record.NewMockImportTx(ctrl)
	svc := record.NewService(repo)

	params := []record.CreateParams{
		{Reference: "PI-1", Amount: 450000, Counterparty: "Textiles Premium S.A."},
		{Amount: 85000, Counterparty: "Accesorios Global"},
	}

	repo.EXPECT().BeginImport(gomock.Any(), tenant, record.KindExpense).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), []string{"PI-1"}).Return(nil, nil)
	itx.EXPECT().CreateRecords(gomock.Any(), gomock.Len(2)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), tenant, record.KindExpense, params)
	require.NoError(t, err)
	require.Len(t, result.Imported, 2)
	assert.Equal(t, record.KindExpense, result.Imported[0].Kind)
	assert.Equal(t, tenant, result.Imported[1].TenantID)
	assert.Empty(t, result.Conflicts)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tenant := uuid.New()
	repo := record.NewMockRepository(ctrl)
	itx := record.NewMockImportTx(ctrl)
	svc := record.NewService(repo)

	params := []record.CreateParams{
		{Reference: "PI-1", Amount: 450000, Counterparty: "Textiles Premium S.A."},
		{Reference: "PI-2", Amount: 85000, Counterparty: "Accesorios Global"},
	}
	existing := &record.Record{ID: uuid.New(), Reference: "PI-1"}

	repo.EXPECT().BeginImport(gomock.Any(), tenant, record.KindExpense).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), []string{"PI-1", "PI-2"}).Return([]*record.Record{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), tenant, record.KindExpense, params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_RepeatedReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tenant := uuid.New()
	repo := record.NewMockRepository(ctrl)
	itx := record.NewMockImportTx(ctrl)
	svc := record.NewService(repo)

	params := []record.CreateParams{
		{Reference: "PI-1", Amount: 450000, Counterparty: "Textiles Premium S.A."},
		{Reference: "PI-2", Amount: 85000, Counterparty: "Accesorios Global"},
		{Reference: "PI-1", Amount: 450000, Counterparty: "Textiles Premium S.A."},
	}

	repo.EXPECT().BeginImport(gomock.Any(), tenant, record.KindExpense).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), tenant, record.KindExpense, params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Equal(t, params[:2], result.New)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[2], result.Conflicts[0].Incoming)
	assert.Equal(t, "PI-1", result.Conflicts[0].Existing.Reference)
	assert.Equal(t, uuid.Nil, result.Conflicts[0].Existing.ID)
}

func TestService_ImportBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := record.NewMockRepository(ctrl)
	svc := record.NewService(repo)

	_, err := svc.ImportBatch(context.Background(), uuid.New(), record.KindExpense, []record.CreateParams{
		{Amount: 10, Counterparty: "ok"},
		{Amount: -5, Counterparty: "negative"},
	})
	require.ErrorIs(t, err, record.ErrInvalid)
	assert.Contains(t, err.Error(), "row 2")
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := record.NewService(record.NewMockRepository(ctrl))

	result, err := svc.ImportBatch(context.Background(), uuid.New(), record.KindExpense, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
}
