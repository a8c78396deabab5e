package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/constants"
	apperrors "github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users` (`created_at`, `email`, `name`, `password_hash`) VALUES (?, ?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", sqlmock.AnyArg(), "hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	u := &models.User{Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(42), u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(&mysql.MySQLError{Number: ErrCodeDuplicateKey, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &models.User{Email: "ada@example.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
	assert.Equal(t, 400, apperrors.GetHTTPStatus(err))
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	query := "SELECT `users`.`id`, `users`.`email`, `users`.`name`, `users`.`password_hash`, `users`.`created_at` FROM `users` WHERE `users`.`email` = ? LIMIT 1"
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(7, "ada@example.com", nil, "hash", now))

	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(7), u.ID)
	assert.Nil(t, u.Name)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestWorkspaceRepository_IsMember(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkspaceRepository(db)
	query := "SELECT EXISTS(SELECT 1 FROM workspace_members WHERE user_id = ? AND workspace_id = ?)"

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.IsMember(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(3), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = repo.IsMember(context.Background(), 3, 2)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkspaceRepository_ListMemberships(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkspaceRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM workspace_members m JOIN workspaces w ON w.id = m.workspace_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "workspace_id", "role", "name", "created_by", "created_at"}).
			AddRow(10, 1, 5, "owner", "ada's Workspace", 1, now).
			AddRow(11, 1, 6, "admin", "Acme", 2, now).
			AddRow(12, 1, 7, "member", "Globex", 3, now))

	list, err := repo.ListMemberships(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, constants.RoleOwner, list[0].Role)
	assert.Equal(t, constants.RoleAdmin, list[1].Role)
	assert.Equal(t, constants.RoleMember, list[2].Role)
	require.NotNil(t, list[0].Workspace)
	assert.Equal(t, int64(5), list[0].Workspace.ID)
	assert.Equal(t, "ada's Workspace", list[0].Workspace.Name)
}

func TestWorkspaceRepository_ListMembershipsRejectsUnknownRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM workspace_members m JOIN workspaces w ON w.id = m.workspace_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "workspace_id", "role", "name", "created_by", "created_at"}).
			AddRow(10, 1, 5, "superuser", "Acme", 1, time.Now().UTC()))

	_, err := repo.ListMemberships(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "superuser"`)
}

func TestMigrate_CreatesTablesInOrder(t *testing.T) {
	db, mock := newMock(t)

	for _, table := range constants.AllTables {
		pattern := regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " (")
		if table == constants.TableWorkspaceMember {
			pattern += ".*" + regexp.QuoteMeta("role ENUM('owner','admin','member') NOT NULL DEFAULT 'member'")
		}
		mock.ExpectExec("(?s)" + pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_CreateDuplicateName(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `workspaces` (`created_at`, `created_by`, `name`) VALUES (?, ?, ?)")).
		WillReturnError(&mysql.MySQLError{Number: ErrCodeDuplicateKey})

	err := repo.Create(context.Background(), &models.Workspace{Name: "Acme"})
	assert.Equal(t, "Workspace name already exists", err.Error())
}

func TestModelRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewModelRepository(db)
	now := time.Now().UTC()

	modelQuery := "SELECT `models`.`id`, `models`.`workspace_id`, `models`.`name`, `models`.`slug`, `models`.`description`, `models`.`rules`, `models`.`created_by`, `models`.`created_at`, `models`.`updated_at` FROM `models` WHERE `models`.`id` = ? LIMIT 1"
	fieldQuery := "SELECT `model_fields`.`id`, `model_fields`.`model_id`, `model_fields`.`name`, `model_fields`.`slug`, `model_fields`.`data_type`, `model_fields`.`is_required`, `model_fields`.`is_unique`, `model_fields`.`position`, `model_fields`.`config` FROM `model_fields` WHERE `model_fields`.`model_id` IN (?) ORDER BY `model_fields`.`position` ASC, `model_fields`.`id` ASC"

	mock.ExpectQuery(regexp.QuoteMeta(modelQuery)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(modelColumns).
			AddRow(3, 1, "Contacts", "contacts", nil, []byte(`[{"name":"r","condition":"age < 0","message":"bad"}]`), 1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(fieldQuery)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(fieldColumns).
			AddRow(11, 3, "Email", "email", "string", true, true, 0, []byte(`{}`)).
			AddRow(12, 3, "Stage", "stage", "enum", false, false, 1, []byte(`{"values": ["a", "b"]}`)))

	m, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "contacts", m.Slug)
	assert.Nil(t, m.Description)
	require.Len(t, m.Rules, 1)
	assert.Equal(t, "age < 0", m.Rules[0].Condition)
	require.Len(t, m.Fields, 2)
	assert.Equal(t, fieldtypes.TypeEnum, m.Fields[1].DataType)
	assert.True(t, m.Fields[0].IsUnique)
	assert.Equal(t, []interface{}{"a", "b"}, m.Fields[1].Config["values"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelRepository_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewModelRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM `models` WHERE `models`.`id` = ?")).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(modelColumns))

	m, err := repo.Get(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestModelRepository_UpdateReplacesFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewModelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `models` SET `description` = ?, `name` = ?, `rules` = ?, `slug` = ?, `updated_at` = ? WHERE `models`.`id` = ?")).
		WithArgs(sqlmock.AnyArg(), "People", "[]", "people", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `model_fields` WHERE `model_fields`.`model_id` = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `model_fields` (`config`, `data_type`, `is_required`, `is_unique`, `model_id`, `name`, `position`, `slug`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")).
		WithArgs("{}", "text", false, false, int64(3), "Title", 0, "title").
		WillReturnResult(sqlmock.NewResult(21, 1))

	m := &models.Model{ID: 3, Name: "People", Slug: "people",
		Fields: []models.Field{{Name: "Title", Slug: "title", DataType: fieldtypes.TypeText}}}
	require.NoError(t, repo.Update(context.Background(), m, true))
	assert.Equal(t, int64(21), m.Fields[0].ID)
	assert.Equal(t, int64(3), m.Fields[0].ModelID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelRepository_LockForWriteNeedsTransaction(t *testing.T) {
	db, _ := newMock(t)
	_, err := NewModelRepository(db).LockForWrite(context.Background(), 1)
	assert.Error(t, err)
}

func TestModelRepository_LockForWriteInTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewModelRepository(db)
	tm := NewTransactionManager(db, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `models`.`id` FROM `models` WHERE `models`.`id` = ? FOR UPDATE")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		found, err := repo.LockForWrite(ctx, 4)
		assert.True(t, found)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListFilterSortPage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)
	now := time.Now().UTC()
	value := "a@example.com"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `records` WHERE `records`.`model_id` = ? AND JSON_UNQUOTE(JSON_EXTRACT(`records`.`data`, ?)) = ?")).
		WithArgs(int64(7), `$."email"`, value).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `records`.`id`, `records`.`model_id`, `records`.`workspace_id`, `records`.`data`, `records`.`created_by`, `records`.`updated_by`, `records`.`created_at`, `records`.`updated_at` FROM `records` WHERE `records`.`model_id` = ? AND JSON_UNQUOTE(JSON_EXTRACT(`records`.`data`, ?)) = ? ORDER BY JSON_UNQUOTE(JSON_EXTRACT(`records`.`data`, ?)) DESC, `records`.`id` DESC LIMIT 10 OFFSET 20")).
		WithArgs(int64(7), `$."email"`, value, `$."name"`).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(100, 7, 1, []byte(`{"email": "a@example.com", "age": 30}`), 1, nil, now, now))

	items, total, err := repo.List(context.Background(), 7, models.RecordListQuery{
		Skip: 20, Limit: 10, SortBy: "name", SortOrder: constants.SortDesc,
		FilterKey: "email", FilterValue: &value,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, items, 1)
	assert.Equal(t, "a@example.com", items[0].Data["email"])
	assert.Nil(t, items[0].UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListDefaultsToCreatedAt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `records` WHERE `records`.`model_id` = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY `records`.`created_at` ASC, `records`.`id` ASC LIMIT 50")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	items, total, err := repo.List(context.Background(), 7, models.RecordListQuery{Limit: 50, SortOrder: constants.SortAsc})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRecordRepository_ScanStopsEarly(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `records`.`id`, `records`.`data` FROM `records` WHERE `records`.`model_id` = ? ORDER BY `records`.`id` ASC")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow(1, []byte(`{"email": "a"}`)).
			AddRow(2, []byte(`{"email": "b"}`)).
			AddRow(3, []byte(`{"email": "c"}`)))

	var seen []int64
	err := repo.ScanModelRecords(context.Background(), 7, func(id int64, doc models.Document) bool {
		seen = append(seen, id)
		return doc["email"] != "b"
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, seen)
}

func TestRecordRepository_CountAndUsage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `records` WHERE `records`.`model_id` = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(499))
	n, err := repo.CountByModel(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 499, n)

	mock.ExpectQuery(regexp.QuoteMeta("FROM models m LEFT JOIN records r ON r.model_id = m.id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "slug", "count"}).
			AddRow(7, 1, "contacts", 499).
			AddRow(8, 1, "accounts", 0))
	usage, err := repo.UsageByModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.ModelUsage{
		{ModelID: 7, WorkspaceID: 1, Slug: "contacts", Records: 499},
		{ModelID: 8, WorkspaceID: 1, Slug: "accounts", Records: 0},
	}, usage)
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."email"`, jsonPath("email"))
	assert.Equal(t, `$."we\"ird"`, jsonPath(`we"ird`))
}
