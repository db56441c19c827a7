package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covtrack/internal/domain"
)

func TestAnnotateCSV(t *testing.T) {
	svc := setup(t)

	in := strings.Join([]string{
		"id,title,steps",
		`101,Ad impressions,"Trigger browser.search.with_ads in US on google"`,
		"102,Nothing to see,plain steps with no telemetry",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, svc.AnnotateCSV(context.Background(), strings.NewReader(in), &out))

	rows, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "title", "steps", "found_probes", "found_regions", "found_engines"}, rows[0])
	assert.Equal(t, []string{"browser.search.with_ads", "US", "google"}, rows[1][3:])
	assert.Equal(t, []string{NothingFound, domain.NoRegion, domain.NoEngine}, rows[2][3:])
}

func TestAnnotateCSV_EmptyInput(t *testing.T) {
	svc := setup(t)

	var out bytes.Buffer
	err := svc.AnnotateCSV(context.Background(), strings.NewReader(""), &out)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRotationCSV(t *testing.T) {
	svc := setup(t)

	in := strings.Join([]string{
		"Case_ID,Title,Notes",
		"C2002,Rotation DE,runs in DE against duckduckgo",
		"TC2003,No dimensions,nothing regional here",
		",missing id,skipped entirely",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, svc.RotationCSV(context.Background(), strings.NewReader(in), &out))

	rows, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"tc_id", "title", "regions", "engines"}, rows[0])
	assert.Equal(t, []string{"2002", "Rotation DE", "DE", "duckduckgo"}, rows[1])
	assert.Equal(t, []string{"2003", "No dimensions", domain.NoRegion, domain.NoEngine}, rows[2])
}

func TestRotationCSV_RequiresIDColumn(t *testing.T) {
	svc := setup(t)

	var out bytes.Buffer
	err := svc.RotationCSV(context.Background(), strings.NewReader("title,notes\nfoo,bar\n"), &out)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
