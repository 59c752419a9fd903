package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/user"
	"github.com/nexusalpri/academy/storage/database/gormjson"
	"github.com/nexusalpri/academy/tests"
)

type testEnv struct {
	cli     *commandLine
	out     *bytes.Buffer
	usrRepo user.Repository
	lessons interface {
		AddLesson(ctx context.Context, courseID, moduleID, lessonID string) error
	}
}

func setup(t *testing.T) testEnv {
	// set up DB & repos
	gdb, err := gormjson.Open(filepath.Join(t.TempDir(), "admin.db"), false)
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	usrRepo := gormjson.NewUserRepository(gdb)
	enrollments := gormjson.NewEnrollmentRepository(gdb)
	lessons := gormjson.NewLessonRepository(gdb)
	validate, _ := testutil.NewValidator()

	// start CLI
	out := new(bytes.Buffer)
	return testEnv{
		cli: &commandLine{
			db:          db,
			usrSvc:      user.NewService(usrRepo),
			enrollments: enrollments,
			progressSvc: progress.NewService(enrollments, lessons, gormjson.NewProgressRepository(gdb)),
			validate:    validate,
			out:         out,
		},
		out:     out,
		usrRepo: usrRepo,
		lessons: lessons,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	var gotCommand string
	runMigrations := runMigrationsFunc
	defer func() { runMigrationsFunc = runMigrations }()
	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCommand = ""
			tt.check(t, env.cli.run(append([]string{"admin"}, tt.args...)))
			if tt.wantErr == nil && tt.wantErrStr == "" {
				assert.Equal(t, tt.args[1], gotCommand)
			}
		})
	}

	t.Run("no SQL database", func(t *testing.T) {
		cli := *env.cli
		cli.db = nil
		assert.Equal(t, errNoSQLDB, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_addUser(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Taken", "taken@test.cd", "", user.RoleStudent, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"adduser"}, extra: extra{pwd: "Passw0rd!"}, wantErrStr: `required flag(s) "email" not set`},
		{name: "no password", args: []string{"adduser", "--email", "joe@test.cd"}, wantErr: errNoPwdRead},
		{name: "password too short", args: []string{"adduser", "--email", "joe@test.cd"}, extra: extra{pwd: "lol"}, wantErrStr: "'password' failed on the 'min' tag"},
		{name: "invalid role", args: []string{"adduser", "--email", "joe@test.cd", "--role", "KING"}, extra: extra{pwd: "Passw0rd!"}, wantErrStr: "'role' failed on the 'oneof' tag"},
		{name: "email taken", args: []string{"adduser", "--email", "TAKEN@test.cd"}, extra: extra{pwd: "Passw0rd!"}, wantErrStr: user.ErrEmailExists.Error()},
		{
			name: "admin", args: []string{"adduser", "--email", "Admin@Test.cd", "--name", "Boss", "--role", user.RoleAdmin},
			extra: extra{pwd: "Passw0rd!"}, wantOut: "created ADMINISTRATOR admin@test.cd",
		},
	}
	readPassword := readPasswordFunc
	defer func() { readPasswordFunc = readPassword }()
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			env.out.Reset()
			tt.check(t, env.cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, env.out.String(), tt.wantOut)
		})
	}

	usr, err := env.usrRepo.GetUserByEmail(context.Background(), "admin@test.cd")
	require.NoError(t, err)
	assert.Equal(t, "Boss", usr.Name)
	assert.True(t, usr.IsAdmin())
	assert.NoError(t, usr.CheckPassword("Passw0rd!"))
}

func Test_commandLine_enrollAndConsolidate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	for _, l := range []string{"l1", "l2", "l3", "l4"} {
		require.NoError(t, env.lessons.AddLesson(ctx, "c1", "m1", l))
	}

	tests := []cliTest{
		{name: "enroll: no flags", args: []string{"enroll"}, wantErrStr: "required flag(s)"},
		{name: "enroll: unknown user", args: []string{"enroll", "--user", "lol", "--course", "c1"}, wantErr: user.ErrNotFound},
		{name: "consolidate: not enrolled", args: []string{"consolidate", "--user", student.ID, "--course", "c1"}, wantErr: progress.ErrNoProgressToConsolidate},
		{name: "enroll", args: []string{"enroll", "--user", student.ID, "--course", "c1"}, wantOut: "enrollment "},
		{name: "consolidate: no progress", args: []string{"consolidate", "--user", student.ID, "--course", "c1"}, wantErr: progress.ErrNoProgressToConsolidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.out.Reset()
			tt.check(t, env.cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, env.out.String(), tt.wantOut)
		})
	}

	// 100 + 100 + 50 + 0 over 4 lessons
	for _, in := range []progress.Interaction{
		{LessonID: "l1", Type: progress.InteractionView},
		{LessonID: "l2", Type: progress.InteractionQuiz, Score: testutil.Float(100)},
		{LessonID: "l3", Type: progress.InteractionQuiz, Score: testutil.Float(50)},
	} {
		in.UserID, in.CourseID = student.ID, "c1"
		require.NoError(t, env.cli.progressSvc.RecordInteraction(ctx, in))
	}
	env.out.Reset()
	require.NoError(t, env.cli.run([]string{"admin", "consolidate", "--user", student.ID, "--course", "c1"}))
	assert.Equal(t, "progress: 62.50%\n", env.out.String())
}
