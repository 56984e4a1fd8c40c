package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

func TestStudentServiceAddStudent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	student, err := f.students.AddStudent(ctx, CreateStudentRequest{ID: 1, Name: " Alice ", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)
	assert.Equal(t, time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC), student.EnrollmentDate)
	assert.Empty(t, student.Enrollments)

	_, err = f.students.AddStudent(ctx, CreateStudentRequest{ID: 1, Name: "Other", Email: "other@example.com"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	all, err := f.studentRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStudentServiceAddStudentValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []CreateStudentRequest{
		{ID: 0, Name: "Zero", Email: "zero@example.com"},
		{ID: -3, Name: "Negative", Email: "neg@example.com"},
		{ID: 2, Name: "", Email: "blank@example.com"},
		{ID: 2, Name: "No At", Email: "no-at.example.com"},
	}
	for _, req := range cases {
		_, err := f.students.AddStudent(ctx, req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "request %+v", req)
	}
}

func TestStudentServiceListSortedByName(t *testing.T) {
	f := newFixture(t, nil)
	f.addStudent(t, 1, "Carol", "carol@example.com")
	f.addStudent(t, 2, "alice", "alice@example.com")
	f.addStudent(t, 3, "Bob", "bob1@example.com")
	f.addStudent(t, 4, "Bob", "bob2@example.com")

	students, err := f.students.ListSorted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 1, 2}, studentIDs(students))
}

func TestStudentServiceSearch(t *testing.T) {
	f := newFixture(t, nil)
	f.addStudent(t, 3, "Carol", "carol@school.org")
	f.addStudent(t, 1, "Alice", "alice@example.com")
	f.addStudent(t, 2, "Bob", "bob@EXAMPLE.com")
	ctx := context.Background()

	all, err := f.students.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, studentIDs(all))

	byEmail, err := f.students.Search(ctx, "Example")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, studentIDs(byEmail))

	byName, err := f.students.Search(ctx, "car")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, studentIDs(byName))

	none, err := f.students.Search(ctx, "zed")
	require.NoError(t, err)
	assert.Empty(t, none)

	f.addStudent(t, 4, "Smith", "smith@school.org")
	f.addStudent(t, 5, "John Smith", "john@school.org")
	padded, err := f.students.Search(ctx, " Smith")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, studentIDs(padded))
}

func TestStudentServiceUpdateEmail(t *testing.T) {
	f := newFixture(t, nil)
	f.addStudent(t, 1, "Alice", "alice@example.com")
	ctx := context.Background()

	_, err := f.students.UpdateEmail(ctx, 99, UpdateEmailRequest{Email: "x@example.com"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.students.UpdateEmail(ctx, 1, UpdateEmailRequest{Email: "invalid"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.students.UpdateEmail(ctx, 1, UpdateEmailRequest{Email: "alice@school.org"})
	require.NoError(t, err)

	stored, err := f.students.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice@school.org", stored.Email)
}

func TestStudentServiceRemove(t *testing.T) {
	f := newFixture(t, nil)
	f.addStudent(t, 1, "Alice", "alice@example.com")
	f.addCourse(t, "CS101", 3, "Dr. Smith")
	f.grade(t, 1, "CS101", 9)
	ctx := context.Background()

	require.NoError(t, f.students.Remove(ctx, 1))
	_, err := f.students.Get(ctx, 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, f.students.Remove(ctx, 1))

	gpa, err := f.grading.CalculateGPA(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gpa)
}
