package model

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientAgeOn(t *testing.T) {
	today := time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

	type ageCase struct {
		name  string
		birth Date
		want  int
	}
	tests := []ageCase{
		{"exactly twenty years", NewDate(2006, time.October, 18), 20},
		{"twenty years and a day", NewDate(2006, time.October, 17), 20},
		{"day before twentieth birthday", NewDate(2006, time.October, 19), 19},
		{"exactly forty years", NewDate(1986, time.October, 18), 40},
		{"born today", NewDate(2026, time.October, 18), 0},
		{"born on a leap day", NewDate(2004, time.February, 29), 22},
	}
	for n := 1; n <= 6; n++ {
		tests = append(tests,
			ageCase{fmt.Sprintf("exactly %d years", n), NewDate(2026-n, time.October, 18), n},
			ageCase{fmt.Sprintf("%d years and a day", n), NewDate(2026-n, time.October, 17), n},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Patient{Birth: tt.birth}
			assert.Equal(t, tt.want, p.AgeOn(today))
		})
	}
}

func TestPatientAgeOnLeapDay(t *testing.T) {
	p := &Patient{Birth: NewDate(2004, time.February, 29)}

	assert.Equal(t, 20, p.AgeOn(time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 21, p.AgeOn(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, p.AgeOn(time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC)))
}

func TestPatientJSONIncludesDerivedFields(t *testing.T) {
	p := Patient{
		Base:        Base{ID: uuid.New()},
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: "+15551234567",
		Birth:       DateOf(time.Now().UTC().AddDate(-40, 0, 0)),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Jane Doe", out["full_name"])
	assert.Equal(t, float64(40), out["age"])
	assert.Equal(t, p.Birth.Format(DateLayout), out["birth"])
	assert.Equal(t, p.ID.String(), out["id"])
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1999-02-03"`), &d))
	assert.Equal(t, NewDate(1999, time.February, 3), d)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1999-02-03"`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`"03/02/1999"`), &d))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestParseOrdering(t *testing.T) {
	orders := ParseOrdering("last_name, -birth,,")
	assert.Equal(t, []Order{{Field: "last_name"}, {Field: "birth", Desc: true}}, orders)
	assert.Empty(t, ParseOrdering(""))
}

func TestBlocklistNormalize(t *testing.T) {
	ip := "::FFFF:10.0.0.1"
	nilID := uuid.Nil
	b := &Blocklist{AccountID: &nilID, IPAddr: &ip}
	b.Normalize()

	assert.Nil(t, b.AccountID)
	require.NotNil(t, b.IPAddr)
	assert.Equal(t, "10.0.0.1", *b.IPAddr)
	assert.False(t, b.Empty())

	empty := ""
	b = &Blocklist{IPAddr: &empty}
	b.Normalize()
	assert.True(t, b.Empty())
}

func TestListQueryLimit(t *testing.T) {
	limit, offset := ListQuery{}.Limit()
	assert.Zero(t, limit)
	assert.Zero(t, offset)

	limit, offset = ListQuery{Page: 3, PageSize: 10}.Limit()
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}
