package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"mergington-activities/internal/catalog"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "version": "test",
  "activities": [
    {"name": "Chess Club", "description": "Chess", "schedule": "Fridays", "max_participants": 12, "participants": ["michael@mergington.edu"]},
    {"name": "Basketball", "description": "Hoops", "schedule": "Tuesdays", "max_participants": 15}
  ]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, validateCatalog(&out, writeCatalog(t, sampleCatalog)))
	assert.Contains(t, out.String(), "Found 2 activities")

	err := validateCatalog(&out, writeCatalog(t, `{"activities":[{"name":"x"}]}`))
	assert.Error(t, err)
}

func TestListCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listCatalog(&out, writeCatalog(t, sampleCatalog)))

	assert.Contains(t, out.String(), "Chess Club")
	assert.Contains(t, out.String(), "1/12")
	assert.Contains(t, out.String(), "0/15")
}

func TestAddActivity(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	err := addActivity(path, catalog.Activity{Name: "Science Olympiad", Description: "Science", Schedule: "Mondays", MaxParticipants: 18})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := catalog.Parse(raw)
	require.NoError(t, err)
	require.Len(t, doc.Activities, 3)
	assert.Equal(t, "Science Olympiad", doc.Activities[2].Name)
	assert.Equal(t, []string{}, doc.Activities[1].Participants)

	err = addActivity(path, catalog.Activity{Name: "Chess Club", Description: "again", Schedule: "x", MaxParticipants: 1})
	assert.ErrorContains(t, err, "already exists")
}

func TestAddActivity_NewFileStartsFromDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")

	err := addActivity(path, catalog.Activity{Name: "Science Olympiad", Description: "Science", Schedule: "Mondays", MaxParticipants: 18})
	require.NoError(t, err)

	def, err := catalog.Default()
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := catalog.Parse(raw)
	require.NoError(t, err)
	assert.Len(t, doc.Activities, len(def.Activities)+1)
}

func TestPushCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeCatalog(t, sampleCatalog)

	err := pushCatalog(context.Background(), path, config.RedisConfig{Address: mr.Addr()}, "activities:catalog")
	require.NoError(t, err)

	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	doc, err := catalog.NewRedisSource(rdb, "activities:catalog").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Activities, 2)
}
