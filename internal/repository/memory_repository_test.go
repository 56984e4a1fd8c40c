package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gpa-api/internal/models"
)

func TestMemoryStudentRepositoryCopySemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStudentRepository()
	require.NoError(t, repo.Create(ctx, models.NewStudent(1, "Ana", "ana@example.com", time.Now())))

	loaded, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	loaded.AddEnrollment(models.NewEnrollment(1, "CS101"))

	unchanged, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, unchanged.Enrollments)

	require.NoError(t, repo.Update(ctx, loaded))
	persisted, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, persisted.Enrollments, 1)
}

func TestMemoryStudentRepositoryOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStudentRepository()
	for _, s := range []*models.Student{
		models.NewStudent(3, "Cid", "cid@example.com", time.Now()),
		models.NewStudent(1, "Ana", "ana@example.com", time.Now()),
		models.NewStudent(2, "Bo", "bo@example.com", time.Now()),
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	students, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, studentIDs(students))

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	students, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, studentIDs(students))
}

func TestMemoryStudentRepositoryAllowsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStudentRepository()
	require.NoError(t, repo.Create(ctx, models.NewStudent(1, "Ana", "ana@example.com", time.Now())))
	require.NoError(t, repo.Create(ctx, models.NewStudent(1, "Other", "other@example.com", time.Now())))

	students, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", first.Name)
}

func TestMemoryCourseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCourseRepository()
	require.NoError(t, repo.Create(ctx, models.NewCourse("CS101", "Intro", 3, "Dr. Smith")))

	course, err := repo.FindByCode(ctx, "CS101")
	require.NoError(t, err)
	course.UpdateCredits(5)

	stored, err := repo.FindByCode(ctx, "CS101")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Credits)

	require.NoError(t, repo.Update(ctx, course))
	stored, err = repo.FindByCode(ctx, "CS101")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Credits)

	require.NoError(t, repo.Delete(ctx, "CS101"))
	require.NoError(t, repo.Delete(ctx, "missing"))
	_, err = repo.FindByCode(ctx, "CS101")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func studentIDs(students []models.Student) []int {
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}
