package cli_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"leave-portal/internal/cli"
	"leave-portal/internal/session/sessiontest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	rejectCalls atomic.Int32
	lastList    atomic.Value
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")

	api.POST("/users/login", func(c *gin.Context) {
		token := sessiontest.Token(t, "ana@corp.test", "EMPLOYEE", time.Now(), time.Hour)
		c.JSON(http.StatusOK, gin.H{"token": token, "role": "EMPLOYEE", "email": "ana@corp.test", "id": 7})
	})
	api.GET("/leave-applications/user/:id", func(c *gin.Context) {
		f.lastList.Store(c.Request.URL.Path)
		c.JSON(http.StatusOK, []gin.H{
			{"id": 41, "employeeId": 7, "employeeName": "Ana Lim", "leaveType": "Annual",
				"startDate": "2030-01-10", "endDate": "2030-01-12", "reason": "Trip", "status": "PENDING"},
		})
	})
	api.PUT("/leave-applications/:id/reject", func(c *gin.Context) {
		f.rejectCalls.Add(1)
		c.Status(http.StatusNoContent)
	})
	api.GET("/leave-types", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Annual", "category": "vacation", "maxDaysPerYear": 20, "isActive": true}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func setupCLI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	t.Setenv("SESSION_STORE", "file")
	t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))

	f := &fakeAPI{}
	return f, f.server(t).URL + "/api"
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewBufferString(""))
	root.SetArgs(append([]string{"--server", server, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_SessionLifecycle(t *testing.T) {
	_, server := setupCLI(t)

	out, err := run(t, server, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = run(t, server, "login", "--email", "ana@corp.test", "--password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ana@corp.test (EMPLOYEE)")

	out, err = run(t, server, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@corp.test (EMPLOYEE), idle timeout in 30m0s")

	out, err = run(t, server, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = run(t, server, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestCLI_Leaves(t *testing.T) {
	f, server := setupCLI(t)
	_, err := run(t, server, "login", "--email", "ana@corp.test", "--password", "hunter22")
	require.NoError(t, err)

	t.Run("success list mine", func(t *testing.T) {
		out, err := run(t, server, "leaves", "list", "--scope", "mine")

		require.NoError(t, err)
		assert.Equal(t, "/api/leave-applications/user/7", f.lastList.Load())
		assert.Contains(t, out, "Ana Lim")
		assert.Contains(t, out, "2030-01-10")
		assert.Contains(t, out, "3.0")
	})

	t.Run("negative unknown status", func(t *testing.T) {
		_, err := run(t, server, "leaves", "list", "--status", "maybe")

		assert.ErrorContains(t, err, `unknown status "maybe"`)
	})

	t.Run("negative short reject reason never calls the api", func(t *testing.T) {
		_, err := run(t, server, "leaves", "reject", "41", "--reason", "short")

		require.Error(t, err)
		assert.Equal(t, int32(0), f.rejectCalls.Load())
	})

	t.Run("negative create with end before start", func(t *testing.T) {
		_, err := run(t, server, "leaves", "create",
			"--type", "Annual", "--start", "2030-02-10", "--end", "2030-02-01", "--reason", "Family trip")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "endDate: End date cannot be before start date")
	})

	t.Run("negative missing id", func(t *testing.T) {
		_, err := run(t, server, "leaves", "approve")

		assert.Error(t, err)
	})
}

func TestCLI_LeaveTypes(t *testing.T) {
	_, server := setupCLI(t)
	_, err := run(t, server, "login", "--email", "ana@corp.test", "--password", "hunter22")
	require.NoError(t, err)

	t.Run("success list", func(t *testing.T) {
		out, err := run(t, server, "leave-types", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "Annual")
		assert.Contains(t, out, "vacation")
	})

	t.Run("negative employee cannot create", func(t *testing.T) {
		_, err := run(t, server, "leave-types", "create", "--name", "Study")

		assert.ErrorContains(t, err, "create leave type")
	})
}

func TestCLI_NotSignedIn(t *testing.T) {
	_, server := setupCLI(t)

	_, err := run(t, server, "leaves", "list")

	assert.Error(t, err)
}
