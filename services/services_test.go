package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/database/mocks"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/rpupo63/colbee-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) database.Database {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	db := database.New(store)
	t.Cleanup(func() { db.Close(context.Background()) })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestProjectService_CreateAssignsFreshIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProjectService(db.ProjectRepo(), services.WithIDGenerator(func() string { return "abc-123" }))

	p, err := svc.Create(ctx, models.RawRecord{"id": "client-id", "ProjectName": "Demo", "totalTask": 4})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", p.ID)
	assert.Equal(t, "Demo", p.Name)
	assert.Equal(t, 4, p.TotalTaskCount)
	assert.Len(t, p.InternalID, 24)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	stored, err := svc.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	_, err = svc.Get(ctx, "client-id")
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectService_CreateValidation(t *testing.T) {
	svc := services.NewProjectService(newTestDatabase(t).ProjectRepo())

	tests := []struct {
		name  string
		input models.RawRecord
		field string
	}{
		{"missing name", models.RawRecord{"desc": "x"}, "name"},
		{"empty name", models.RawRecord{"name": "  "}, "name"},
		{"non string name", models.RawRecord{"name": 7}, "name"},
		{"empty description", models.RawRecord{"name": "a", "desc": ""}, "desc"},
		{"negative legacy count", models.RawRecord{"name": "a", "totalTask": -1}, "totalTask"},
		{"non numeric count", models.RawRecord{"name": "a", "completedTaskCount": "many"}, "completedTaskCount"},
		{"progression above range", models.RawRecord{"name": "a", "progressionPercent": 101}, "progressionPercent"},
		{"members not a list", models.RawRecord{"name": "a", "members": "ann"}, "members"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errs.IsValidationError(err))
			assert.False(t, errs.IsNotFound(err))

			var apiErr *errs.ApiErr
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.field, apiErr.Field)
			assert.Equal(t, 400, apiErr.StatusCode)
		})
	}
}

func TestProjectService_ListOldestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProjectService(db.ProjectRepo(), services.WithClock(steppingClock()))

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, models.RawRecord{"name": name})
		require.NoError(t, err)
	}

	projects, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "first", projects[0].Name)
	assert.Equal(t, "third", projects[2].Name)
}

func TestProjectService_UpdateWithLegacyFieldOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProjectService(db.ProjectRepo(), services.WithClock(steppingClock()))

	created, err := svc.Create(ctx, models.RawRecord{"name": "Old", "desc": "kept"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, models.RawRecord{"ProjectName": "Renamed", "id": "hijack"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "kept", updated.Description)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestProjectService_UpdateRewritesLegacyRecord(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	// a record written before generated ids and canonical names existed
	projects := services.NewProjectService(db.ProjectRepo())
	legacyRepo := db.ProjectRepo()
	internalID, err := legacyRepo.Add(ctx, models.RawRecord{"ProjectName": "Legacy", "Description": "old", "favourite": true, "dayleft": 5})
	require.NoError(t, err)

	updated, err := projects.Update(ctx, internalID, models.RawRecord{"daysLeft": 9})
	require.NoError(t, err)
	assert.Equal(t, internalID, updated.InternalID)
	assert.Equal(t, "Legacy", updated.Name)
	assert.Equal(t, "old", updated.Description)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, 9, updated.DaysLeft)

	// only the patched field is rewritten; its legacy spelling goes with it
	raw, _, err := legacyRepo.Resolve(ctx, internalID)
	require.NoError(t, err)
	assert.NotContains(t, raw, "dayleft")
	assert.EqualValues(t, 9, raw["daysLeft"])
	assert.Equal(t, "Legacy", raw["ProjectName"])
	assert.NotContains(t, raw, "name")

	updated, err = projects.Update(ctx, internalID, models.RawRecord{"name": "Modern"})
	require.NoError(t, err)
	assert.Equal(t, "Modern", updated.Name)

	raw, _, err = legacyRepo.Resolve(ctx, internalID)
	require.NoError(t, err)
	assert.NotContains(t, raw, "ProjectName")
	assert.Equal(t, "Modern", raw["name"])
}

// afterFind runs hook once, right after the first armed FindOne returns.
type afterFind struct {
	database.Collection
	once sync.Once
	hook func()
}

func (c *afterFind) FindOne(ctx context.Context, filter database.Filter) (models.RawRecord, error) {
	raw, err := c.Collection.FindOne(ctx, filter)
	if c.hook != nil {
		c.once.Do(c.hook)
	}
	return raw, err
}

func TestProjectService_UpdateKeepsToggleBetweenResolveAndWrite(t *testing.T) {
	ctx := context.Background()
	store, err := database.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })
	require.NoError(t, store.Migrate(ctx, database.ProjectsCollection))

	plain := services.NewProjectService(database.NewProjectRepo(store.Collection(database.ProjectsCollection)))
	racy := &afterFind{Collection: store.Collection(database.ProjectsCollection)}
	svc := services.NewProjectService(database.NewProjectRepo(racy))

	p, err := plain.Create(ctx, models.RawRecord{"name": "Alpha"})
	require.NoError(t, err)
	require.False(t, p.IsFavorite)

	racy.hook = func() {
		_, err := plain.ToggleFavorite(ctx, p.ID)
		require.NoError(t, err)
	}

	updated, err := svc.Update(ctx, p.ID, models.RawRecord{"ProjectName": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsFavorite)

	stored, err := plain.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFavorite)
	assert.Equal(t, "Renamed", stored.Name)
}

func TestProjectService_RejectsOutOfRangeCounts(t *testing.T) {
	ctx := context.Background()
	svc := services.NewProjectService(newTestDatabase(t).ProjectRepo())

	for _, input := range []models.RawRecord{
		{"name": "a", "totalTaskCount": 1e20},
		{"name": "a", "completedTask": "1e12"},
		{"name": "a", "daysLeft": -1e20},
	} {
		_, err := svc.Create(ctx, input)
		assert.True(t, errs.IsInvalidFieldError(err), "%v", input)
	}

	p, err := svc.Create(ctx, models.RawRecord{"name": "a", "totalTaskCount": float64(models.MaxWholeNumber)})
	require.NoError(t, err)
	assert.Equal(t, models.MaxWholeNumber, p.TotalTaskCount)

	_, err = svc.Update(ctx, p.ID, models.RawRecord{"attachmentCount": 1e20})
	assert.True(t, errs.IsInvalidFieldError(err))
}

func TestProjectService_UpdateValidationAndNotFound(t *testing.T) {
	ctx := context.Background()
	svc := services.NewProjectService(newTestDatabase(t).ProjectRepo())

	_, err := svc.Update(ctx, "nope", models.RawRecord{"name": "x"})
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Update(ctx, "nope", models.RawRecord{"Description": ""})
	assert.True(t, errs.IsValidationError(err))
}

func TestProjectService_ConcurrentTogglesMatchCallParity(t *testing.T) {
	ctx := context.Background()
	svc := services.NewProjectService(newTestDatabase(t).ProjectRepo())

	p, err := svc.Create(ctx, models.RawRecord{"name": "Toggled"})
	require.NoError(t, err)
	require.False(t, p.IsFavorite)

	for _, calls := range []int{2, 3} {
		var wg sync.WaitGroup
		for range calls {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ToggleFavorite(ctx, p.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		current, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		p.IsFavorite = p.IsFavorite != (calls%2 == 1)
		assert.Equal(t, p.IsFavorite, current.IsFavorite, "after %d toggles", calls)
	}
}

func TestProjectService_ToggleReturnsPostImage(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProjectService(db.ProjectRepo(), services.WithClock(steppingClock()))

	p, err := svc.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)

	toggled, err := svc.ToggleFavorite(ctx, p.InternalID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)
	assert.True(t, toggled.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, p.ID, toggled.ID)

	_, err = svc.ToggleFavorite(ctx, "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectService_DeleteThenResolve(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProjectService(db.ProjectRepo())

	p, err := svc.Create(ctx, models.RawRecord{"name": "Doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.True(t, errs.IsNotFound(err))
	_, err = svc.Get(ctx, p.InternalID)
	assert.True(t, errs.IsNotFound(err))

	err = svc.Delete(ctx, p.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectService_StorageFailureIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	projects := store.Collections[database.ProjectsCollection]
	projects.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("i/o timeout"))
	projects.On("FindMany", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	svc := services.NewProjectService(database.New(store).ProjectRepo())

	_, err := svc.Get(ctx, "abc-123")
	assert.True(t, errs.IsStorageError(err))
	assert.False(t, errs.IsNotFound(err))
	assert.False(t, errs.IsValidationError(err))

	_, err = svc.List(ctx)
	assert.True(t, errs.IsDatabaseTimeoutError(err))
	assert.Equal(t, 503, errs.StatusCode(err))
}

func TestCommentService_CreateSnapshotsProject(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	projects := services.NewProjectService(db.ProjectRepo())
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo())

	p, err := projects.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)

	c, err := comments.Create(ctx, p.ID, models.RawRecord{"projectId": p.ID, "content": "fix typo", "lineNumber": 12})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, p.ID, c.ProjectID)
	assert.Equal(t, "Demo", c.ProjectName)
	assert.Equal(t, "Anonymous", c.Author)
	require.NotNil(t, c.LineNumber)
	assert.Equal(t, 12, *c.LineNumber)

	byInternal, err := comments.Create(ctx, p.InternalID, models.RawRecord{"content": "via internal id", "author": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, byInternal.ProjectID)
	assert.Equal(t, "Ann", byInternal.Author)
	assert.Nil(t, byInternal.LineNumber)
}

func TestCommentService_CreateErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	projects := services.NewProjectService(db.ProjectRepo())
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo())

	p, err := projects.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)

	_, err = comments.Create(ctx, "missing", models.RawRecord{"content": "x"})
	assert.True(t, errs.IsNotFound(err))

	_, err = comments.Create(ctx, p.ID, models.RawRecord{})
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	_, err = comments.Create(ctx, p.ID, models.RawRecord{"content": ""})
	assert.True(t, errs.IsInvalidFieldError(err))

	for _, line := range []any{0, -3, 2.5, "x"} {
		_, err = comments.Create(ctx, p.ID, models.RawRecord{"content": "x", "lineNumber": line})
		assert.True(t, errs.IsValidationError(err), "lineNumber %v", line)
	}
}

func TestCommentService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	clock := steppingClock()
	projects := services.NewProjectService(db.ProjectRepo(), services.WithClock(clock))
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo(), services.WithClock(clock), services.WithIDGenerator(sequentialIDs("c")))

	p, err := projects.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)
	other, err := projects.Create(ctx, models.RawRecord{"name": "Other"})
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, err := comments.Create(ctx, p.ID, models.RawRecord{"content": content})
		require.NoError(t, err)
	}
	_, err = comments.Create(ctx, other.ID, models.RawRecord{"content": "elsewhere"})
	require.NoError(t, err)
	// filed under the internal id rather than the canonical one
	_, err = db.CommentRepo().Add(ctx, models.RawRecord{"id": "stray", "projectId": p.InternalID, "content": "stray"})
	require.NoError(t, err)

	list, err := comments.ListByProject(ctx, p.InternalID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{list[0].Content, list[1].Content, list[2].Content})

	_, err = comments.ListByProject(ctx, "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	clock := steppingClock()
	projects := services.NewProjectService(db.ProjectRepo(), services.WithClock(clock))
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo(), services.WithClock(clock))

	p, err := projects.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)
	c, err := comments.Create(ctx, p.ID, models.RawRecord{"content": "draft", "lineNumber": 3})
	require.NoError(t, err)

	updated, err := comments.Update(ctx, c.InternalID, models.RawRecord{"content": "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, c.LineNumber, updated.LineNumber)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))

	_, err = comments.Update(ctx, c.ID, models.RawRecord{"content": " "})
	assert.True(t, errs.IsValidationError(err))

	require.NoError(t, comments.Delete(ctx, c.ID))
	assert.True(t, errs.IsNotFound(comments.Delete(ctx, c.ID)))
	_, err = comments.Update(ctx, c.ID, models.RawRecord{"content": "late"})
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectDelete_DoesNotCascadeToComments(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	projects := services.NewProjectService(db.ProjectRepo())
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo())

	p, err := projects.Create(ctx, models.RawRecord{"name": "Demo"})
	require.NoError(t, err)
	c, err := comments.Create(ctx, p.ID, models.RawRecord{"content": "orphan to be"})
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, p.ID))

	raw, _, err := db.CommentRepo().Resolve(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, models.NormalizeComment(raw).ProjectID)
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	svc := services.NewProfileService(db.UserRepo())

	userID, err := db.UserRepo().Add(ctx, models.RawRecord{"email": "a@b.c", "password": "hash", "userName": "ann"})
	require.NoError(t, err)

	u, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, "ann", u.UserName)
	assert.Equal(t, "user", u.Role)

	updated, err := svc.Update(ctx, userID, models.RawRecord{
		"firstName": "Ann",
		"password":  "new",
		"_id":       "65f1c0ffee0000000000abcd",
		"id":        "other",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, updated.ID)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.False(t, updated.UpdatedAt.IsZero())

	raw, err := db.UserRepo().FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "hash", raw["password"])
	assert.NotContains(t, raw, "id")

	_, err = svc.Get(ctx, "not-an-object-id")
	assert.True(t, errs.IsValidationError(err))

	_, err = svc.Get(ctx, "65f1c0ffee0000000000abcd")
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Update(ctx, userID, models.RawRecord{"email": 5})
	assert.True(t, errs.IsInvalidFieldError(err))
}
