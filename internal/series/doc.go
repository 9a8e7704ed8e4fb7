// Package series implements the alias repository over the series tracker's
// native storage: the Series media table and the SceneMappings alias table.
// The tracker owns both; the overlay only reads media rows and writes
// manual alias rows.
package series
