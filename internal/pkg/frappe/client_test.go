package frappe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
)

var cst = time.FixedZone("CST", -6*60*60)

func newTestClient(t *testing.T, srv *httptest.Server, pageSize int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:   srv.URL,
		APIKey:    "key",
		APISecret: "secret",
		PageSize:  pageSize,
		Timeout:   2 * time.Second,
		Location:  cst,
	})
	require.NoError(t, err)
	return c
}

func writeRows(t *testing.T, w http.ResponseWriter, rows any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": rows}))
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://erp.local", APIKey: "key"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient(Config{BaseURL: "http://erp.local", APISecret: "secret"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCheckInSource_PaginatesAndAuthenticates(t *testing.T) {
	all := []checkInRow{
		{Employee: "HR-EMP-1", EmployeeName: "Ana", Time: "2024-03-04 07:58:00", DeviceID: "VILLAS-1"},
		{Employee: "HR-EMP-1", EmployeeName: "Ana", Time: "2024-03-04 17:01:00", DeviceID: "VILLAS-1"},
		{Employee: "HR-EMP-1", EmployeeName: "Ana", Time: "2024-03-04 17:01:00", DeviceID: "VILLAS-1"},
		{Employee: "HR-EMP-2", EmployeeName: "Luis", Time: "not a time", DeviceID: "VILLAS-2"},
		{Employee: "HR-EMP-2", EmployeeName: "Luis", Time: "2024-03-05 08:03:00", DeviceID: "VILLAS-2"},
	}

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/resource/Employee Checkin", r.URL.Path)

		var orFilters [][]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("or_filters")), &orFilters))
		assert.Equal(t, []string{"device_id", "like", "%villas%"}, orFilters[0])

		start, _ := strconv.Atoi(r.URL.Query().Get("limit_start"))
		size, _ := strconv.Atoi(r.URL.Query().Get("limit_page_length"))
		end := min(start+size, len(all))
		if start > len(all) {
			start = len(all)
		}
		writeRows(t, w, all[start:end])
	}))
	defer srv.Close()

	src := NewCheckInSource(newTestClient(t, srv, 2), checkin.NewBranchMapper(nil))
	res, err := src.FetchCheckIns(context.Background(), checkin.Query{
		Start:  time.Date(2024, 3, 4, 0, 0, 0, 0, cst),
		End:    time.Date(2024, 3, 5, 0, 0, 0, 0, cst),
		Branch: "Villas",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load())
	assert.False(t, res.Partial)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Records, 3)
	assert.Equal(t, time.Date(2024, 3, 4, 7, 58, 0, 0, cst), res.Records[0].Time)
	assert.Equal(t, "Luis", res.Records[2].EmployeeName)
}

func TestCheckInSource_FailedPageKeepsEarlierPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit_start") != "0" {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		writeRows(t, w, []checkInRow{
			{Employee: "E1", Time: "2024-03-04 08:00:00", DeviceID: "nave"},
			{Employee: "E1", Time: "2024-03-04 17:00:00", DeviceID: "nave"},
		})
	}))
	defer srv.Close()

	src := NewCheckInSource(newTestClient(t, srv, 2), nil)
	res, err := src.FetchCheckIns(context.Background(), checkin.Query{
		Start: time.Date(2024, 3, 4, 0, 0, 0, 0, cst),
		End:   time.Date(2024, 3, 4, 0, 0, 0, 0, cst),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, checkin.ErrSourceUnavailable)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.True(t, res.Partial)
	assert.Len(t, res.Records, 2)
}

func TestCheckInSource_UnknownBranch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer srv.Close()

	src := NewCheckInSource(newTestClient(t, srv, 10), nil)
	_, err := src.FetchCheckIns(context.Background(), checkin.Query{Branch: "Monterrey"})
	assert.ErrorIs(t, err, checkin.ErrUnknownBranch)
}

func TestCheckInSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeRows(t, w, []checkInRow{})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", APISecret: "s", Timeout: 50 * time.Millisecond, Location: cst})
	require.NoError(t, err)

	res, err := NewCheckInSource(c, nil).FetchCheckIns(context.Background(), checkin.Query{
		Start: time.Date(2024, 3, 4, 0, 0, 0, 0, cst),
		End:   time.Date(2024, 3, 4, 0, 0, 0, 0, cst),
	})
	assert.Error(t, err)
	assert.True(t, res.Partial)
	assert.Empty(t, res.Records)
}

func TestLeaveSource_FiltersAndParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Leave Application", r.URL.Path)

		var filters [][]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters))
		assert.Contains(t, filters, []string{"status", "=", "Approved"})
		assert.Contains(t, filters, []string{"from_date", "<=", "2024-03-31"})
		assert.Contains(t, filters, []string{"to_date", ">=", "2024-03-01"})

		fmt.Fprint(w, `{"data": [
			{"employee": "E1", "employee_name": "Ana", "leave_type": "Vacaciones", "from_date": "2024-02-28", "to_date": "2024-03-02", "status": "Approved", "half_day": 0},
			{"employee": "E2", "employee_name": "Luis", "leave_type": "Permiso", "from_date": "2024-03-05", "to_date": "2024-03-05", "status": "Approved", "half_day": 1},
			{"employee": "E3", "leave_type": "Permiso", "from_date": "05/03/2024", "to_date": "2024-03-05", "status": "Approved", "half_day": 0},
			{"employee": "E4", "leave_type": "Permiso", "from_date": "2024-03-09", "to_date": "2024-03-05", "status": "Approved", "half_day": "0"}
		]}`)
	}))
	defer srv.Close()

	src := NewLeaveSource(newTestClient(t, srv, 100))
	res, err := src.FetchLeaves(context.Background(), leave.Query{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, cst),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, cst),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Periods, 2)
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, cst), res.Periods[0].From)
	assert.False(t, res.Periods[0].HalfDay)
	assert.True(t, res.Periods[1].HalfDay)
	assert.True(t, res.Periods[1].IsApproved())
}

func TestParseTimestamp(t *testing.T) {
	c := &Client{serverLoc: time.UTC, loc: cst}

	ts, err := c.parseTimestamp("2024-03-04 14:00:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())
	assert.Equal(t, cst, ts.Location())

	ts, err = c.parseTimestamp("2024-03-04 14:00:00.250000")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(ts.Nanosecond()))

	ts, err = c.parseTimestamp("2024-03-04T08:00:00-06:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = c.parseTimestamp("04/03/2024")
	assert.Error(t, err)
}

func TestEmployeeDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Employee", r.URL.Path)

		var filters [][]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters))
		if len(filters) > 0 && filters[0][0] == "name" {
			if filters[0][2] == "HR-EMP-1" {
				fmt.Fprint(w, `{"data": [{"name": "HR-EMP-1", "employee_name": "Ana Ruiz"}]}`)
				return
			}
			fmt.Fprint(w, `{"data": []}`)
			return
		}

		assert.Contains(t, filters, []string{"status", "=", "Active"})
		assert.Contains(t, filters, []string{"branch", "like", "Villas"})
		fmt.Fprint(w, `{"data": [
			{"name": "HR-EMP-1", "employee_name": "Ana Ruiz", "branch": "Villas", "status": "Active"},
			{"name": " ", "employee_name": "Sin código", "branch": "Villas", "status": "Active"}
		]}`)
	}))
	defer srv.Close()

	dir := NewEmployeeDirectory(newTestClient(t, srv, 100))

	employees, err := dir.GetActive(context.Background(), "Villas")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "HR-EMP-1", employees[0].Code)
	assert.True(t, employees[0].Active)

	name, err := dir.GetName(context.Background(), "HR-EMP-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", name)

	_, err = dir.GetName(context.Background(), "HR-EMP-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
