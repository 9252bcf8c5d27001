package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertSessionCookies = `
insert into session_cookies (institution, username, cookies, updated_at)
values (?, ?, ?, ?)
on conflict (institution, username) do update set
    cookies = excluded.cookies,
    updated_at = excluded.updated_at
`

type UpsertSessionCookiesParams struct {
	Institution string
	Username    string
	Cookies     string
	UpdatedAt   int64
}

func (q *Queries) UpsertSessionCookies(ctx context.Context, arg UpsertSessionCookiesParams) error {
	_, err := q.db.ExecContext(ctx, upsertSessionCookies,
		arg.Institution,
		arg.Username,
		arg.Cookies,
		arg.UpdatedAt,
	)
	return err
}

const getSessionCookies = `
select cookies from session_cookies
where institution = ? and username = ?
`

type GetSessionCookiesParams struct {
	Institution string
	Username    string
}

func (q *Queries) GetSessionCookies(ctx context.Context, arg GetSessionCookiesParams) (string, error) {
	row := q.db.QueryRowContext(ctx, getSessionCookies, arg.Institution, arg.Username)
	var cookies string
	err := row.Scan(&cookies)
	return cookies, err
}

const deleteSessionCookies = `
delete from session_cookies
where institution = ? and username = ?
`

type DeleteSessionCookiesParams struct {
	Institution string
	Username    string
}

func (q *Queries) DeleteSessionCookies(ctx context.Context, arg DeleteSessionCookiesParams) error {
	_, err := q.db.ExecContext(ctx, deleteSessionCookies, arg.Institution, arg.Username)
	return err
}

const createUserCourse = `
insert into user_course (user, course) values (?, ?)
on conflict (user, course) do nothing
`

type CreateUserCourseParams struct {
	User   string
	Course string
}

func (q *Queries) CreateUserCourse(ctx context.Context, arg CreateUserCourseParams) error {
	_, err := q.db.ExecContext(ctx, createUserCourse, arg.User, arg.Course)
	return err
}

const getUserCourseId = `
select id from user_course
where user = ? and course = ?
`

type GetUserCourseIdParams struct {
	User   string
	Course string
}

func (q *Queries) GetUserCourseId(ctx context.Context, arg GetUserCourseIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserCourseId, arg.User, arg.Course)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteGradeSnapshotsIn = `
delete from grade_snapshot
where user_course_id = ? and time >= ? and time < ?
`

type DeleteGradeSnapshotsInParams struct {
	UserCourseID int64
	After        int64
	Before       int64
}

func (q *Queries) DeleteGradeSnapshotsIn(ctx context.Context, arg DeleteGradeSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteGradeSnapshotsIn, arg.UserCourseID, arg.After, arg.Before)
	return err
}

const createGradeSnapshot = `
insert into grade_snapshot (user_course_id, time, value) values (?, ?, ?)
`

type CreateGradeSnapshotParams struct {
	UserCourseID int64
	Time         int64
	Value        float64
}

func (q *Queries) CreateGradeSnapshot(ctx context.Context, arg CreateGradeSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createGradeSnapshot, arg.UserCourseID, arg.Time, arg.Value)
	return err
}

const getGradeSnapshots = `
select user_course.course, grade_snapshot.time, grade_snapshot.value
from grade_snapshot
inner join user_course on user_course.id = grade_snapshot.user_course_id
where user_course.user = ?
order by user_course.course, grade_snapshot.time
`

type GetGradeSnapshotsRow struct {
	Course string
	Time   int64
	Value  float64
}

func (q *Queries) GetGradeSnapshots(ctx context.Context, user string) ([]GetGradeSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, getGradeSnapshots, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetGradeSnapshotsRow
	for rows.Next() {
		var i GetGradeSnapshotsRow
		err := rows.Scan(&i.Course, &i.Time, &i.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
