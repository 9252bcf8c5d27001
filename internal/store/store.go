package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sisassist-backend/internal/components/chrono"
	"sisassist-backend/internal/db"
	"sisassist-backend/internal/scrapers/sis"
)

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
	clock  chrono.API
}

func NewStore(database *sql.DB, clock chrono.API) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		clock:  clock,
	}
}

// SaveCookies replaces the stored cookies of a user.
func (s Store) SaveCookies(ctx context.Context, institution, username string, cookies []sis.Cookie) error {
	serialized, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	return s.qry.UpsertSessionCookies(ctx, db.UpsertSessionCookiesParams{
		Institution: institution,
		Username:    username,
		Cookies:     string(serialized),
		UpdatedAt:   s.clock.Now().Unix(),
	})
}

// LoadCookies returns the stored cookies of a user, or nil if there are none.
func (s Store) LoadCookies(ctx context.Context, institution, username string) ([]sis.Cookie, error) {
	serialized, err := s.qry.GetSessionCookies(ctx, db.GetSessionCookiesParams{
		Institution: institution,
		Username:    username,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cookies []sis.Cookie
	err = json.Unmarshal([]byte(serialized), &cookies)
	if err != nil {
		return nil, fmt.Errorf("unmarshal stored cookies: %w", err)
	}
	return cookies, nil
}

func (s Store) ClearCookies(ctx context.Context, institution, username string) error {
	return s.qry.DeleteSessionCookies(ctx, db.DeleteSessionCookiesParams{
		Institution: institution,
		Username:    username,
	})
}

type CourseSnapshot struct {
	Course string
	Value  float64
}

type PushRequest struct {
	Time    time.Time
	User    string
	Courses []CourseSnapshot
}

// PushGrades records the current grade of each course, a course has at most one
// snapshot per day so pushing twice on the same day replaces the earlier value.
func (s Store) PushGrades(ctx context.Context, req PushRequest) error {
	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	startOfToday := chrono.StartOfDay(req.Time, s.clock.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)

	for _, course := range req.Courses {
		err := txqry.CreateUserCourse(ctx, db.CreateUserCourseParams{
			User:   req.User,
			Course: course.Course,
		})
		if err != nil {
			return err
		}
		userCourseId, err := txqry.GetUserCourseId(ctx, db.GetUserCourseIdParams{
			User:   req.User,
			Course: course.Course,
		})
		if err != nil {
			return err
		}

		err = txqry.DeleteGradeSnapshotsIn(ctx, db.DeleteGradeSnapshotsInParams{
			UserCourseID: userCourseId,
			After:        startOfToday.Unix(),
			Before:       startOfTomorrow.Unix(),
		})
		if err != nil {
			return err
		}
		err = txqry.CreateGradeSnapshot(ctx, db.CreateGradeSnapshotParams{
			UserCourseID: userCourseId,
			Time:         req.Time.Unix(),
			Value:        course.Value,
		})
		if err != nil {
			return err
		}
	}

	return commit()
}

type GradeSnapshot struct {
	Time  time.Time
	Value float64
}

type CourseSnapshotSeries struct {
	Course    string
	Snapshots []GradeSnapshot
}

// PullGrades returns every course of a user with its snapshots in chronological order.
func (s Store) PullGrades(ctx context.Context, user string) ([]CourseSnapshotSeries, error) {
	rows, err := s.qry.GetGradeSnapshots(ctx, user)
	if err != nil {
		return nil, err
	}

	var courses []CourseSnapshotSeries
	for _, r := range rows {
		if len(courses) == 0 || courses[len(courses)-1].Course != r.Course {
			courses = append(courses, CourseSnapshotSeries{Course: r.Course})
		}
		current := &courses[len(courses)-1]
		current.Snapshots = append(current.Snapshots, GradeSnapshot{
			Time:  time.Unix(r.Time, 0).In(s.clock.Location()),
			Value: r.Value,
		})
	}
	return courses, nil
}
