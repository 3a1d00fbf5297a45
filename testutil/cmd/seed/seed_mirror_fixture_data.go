package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prochist/ip21-connector-go/testutil/ip21engine/config"
)

const (
	// NumAnalogTags - Number of analog tags seeded into IP_AIDef - adapt these as needed
	//
	// WARNING
	//
	// 250 tags at 720 trend points produce 180K trend rows, the COPY takes a few seconds.
	// A million trend rows is still fine, beyond that the bulk load starts to drag.
	NumAnalogTags = 200

	// NumDiscreteTags - Number of discrete tags seeded into IP_DIDef - adapt these as needed
	NumDiscreteTags = 50

	// TrendPointsPerTag is the number of trend samples seeded per tag.
	TrendPointsPerTag = 720

	// TrendStep is the spacing between consecutive trend samples.
	// 720 points at 5s span exactly one hour, so a sliding read window
	// ending now finds fresh samples.
	TrendStep = 5 * time.Second

	// HistoryFrequency is the resample period of the actuals seeded into HISTORY.
	HistoryFrequency = time.Minute

	analogGroup   = "IP_AIDef"
	discreteGroup = "IP_DIDef"
	historyTable  = "HISTORY"
)

type tagSeed struct {
	Name        string
	Group       string
	Description string
	EngUnits    string
}

func main() {
	if err := SeedMirrorFixtureData(); err != nil {
		log.Fatalf("Error seeding mirror fixture data: %v", err)
	}
}

func SeedMirrorFixtureData() error {
	startTime := time.Now()

	fmt.Println("🚀 Starting historian mirror seeding")
	fmt.Printf("🎯 Target: %s\n", config.MirrorDSN())
	fmt.Println()

	ctx := context.Background()

	fmt.Printf("🔗\tConnecting to mirror database...")
	connPool, err := pgxpool.NewWithConfig(ctx, config.MirrorPGXPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer connPool.Close()
	fmt.Println(" ✅")

	fmt.Printf("🏗️\tEnsuring mirror schema...")
	if err := ensureSchema(ctx, connPool); err != nil {
		return err
	}
	fmt.Println(" ✅")

	fmt.Printf("🧹\tClearing existing data...")
	for _, table := range []string{analogGroup, discreteGroup, historyTable} {
		if _, err := connPool.Exec(ctx, fmt.Sprintf(`TRUNCATE TABLE "%s"`, table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	fmt.Println(" ✅")

	trendStart := time.Now().Add(-TrendPointsPerTag * TrendStep).Truncate(time.Second)

	analogTags := generateAnalogTags()
	discreteTags := generateDiscreteTags()

	fmt.Printf("📥\tSeeding %s trends...", analogGroup)
	copyStart := time.Now()
	rows, err := copyTagTrends(ctx, connPool, analogGroup, analogTags, trendStart)
	if err != nil {
		return err
	}
	fmt.Printf(" ✅ %s rows in %v\n", formatNumber(rows), time.Since(copyStart).Round(time.Millisecond))

	fmt.Printf("📥\tSeeding %s trends...", discreteGroup)
	copyStart = time.Now()
	rows, err = copyTagTrends(ctx, connPool, discreteGroup, discreteTags, trendStart)
	if err != nil {
		return err
	}
	fmt.Printf(" ✅ %s rows in %v\n", formatNumber(rows), time.Since(copyStart).Round(time.Millisecond))

	fmt.Printf("📥\tSeeding %s actuals...", historyTable)
	copyStart = time.Now()
	rows, err = copyHistoryActuals(ctx, connPool, analogTags, trendStart)
	if err != nil {
		return err
	}
	fmt.Printf(" ✅ %s rows in %v\n", formatNumber(rows), time.Since(copyStart).Round(time.Millisecond))

	fmt.Printf("🔍 Verifying seeded data...")
	var total int64
	for _, table := range []string{analogGroup, discreteGroup, historyTable} {
		var count int64
		row := connPool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM "%s"`, table))
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("failed to verify %s: %w", table, err)
		}
		total += count
	}
	fmt.Println(" ✅")

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Printf("Seeding completed! 🎉\n")
	fmt.Printf("Total tags seeded: %d 🏷️\n", NumAnalogTags+NumDiscreteTags)
	fmt.Printf("Total rows seeded: %s 📊\n", formatNumber(total))
	fmt.Printf("Total time: %v ⏱️\n", elapsed.Round(time.Millisecond))

	return nil
}

// ensureSchema creates the mirror's record tables if they do not exist yet.
// The quoted identifiers must match what the connector's queries render, so
// the mixed-case InfoPlus.21 names survive on PostgreSQL.
func ensureSchema(ctx context.Context, connPool *pgxpool.Pool) error {
	groupTableDDL := `CREATE TABLE IF NOT EXISTS "%s" (
		"NAME" text NOT NULL,
		"IP_TAG_TYPE" text,
		"IP_DESCRIPTION" text,
		"IP_ENG_UNITS" text,
		"IP_DCS_NAME" text,
		"IP_TREND_TIME" timestamptz NOT NULL,
		"IP_TREND_VALUE" double precision
	)`

	historyTableDDL := `CREATE TABLE IF NOT EXISTS "HISTORY" (
		"NAME" text NOT NULL,
		"TS" timestamptz NOT NULL,
		"VALUE" double precision,
		"REQUEST" integer NOT NULL,
		"PERIOD" bigint NOT NULL
	)`

	for _, group := range []string{analogGroup, discreteGroup} {
		if _, err := connPool.Exec(ctx, fmt.Sprintf(groupTableDDL, group)); err != nil {
			return fmt.Errorf("failed to create %s: %w", group, err)
		}
	}

	if _, err := connPool.Exec(ctx, historyTableDDL); err != nil {
		return fmt.Errorf("failed to create HISTORY: %w", err)
	}

	return nil
}

func generateAnalogTags() []tagSeed {
	// Sample instrument data
	instruments := []struct {
		Prefix      string
		Description string
		EngUnits    string
	}{
		{"tc", "Temperature Controller", "DEG"},
		{"fc", "Flow Controller", "M3/H"},
		{"pc", "Pressure Controller", "KPA"},
		{"lc", "Level Controller", "PCT"},
		{"ac", "Analyzer Controller", "PH"},
	}

	tags := make([]tagSeed, 0, NumAnalogTags)
	for i := 0; i < NumAnalogTags; i++ {
		instrument := instruments[i%len(instruments)]
		unit := i/len(instruments) + 1

		tags = append(tags, tagSeed{
			Name:        fmt.Sprintf("%s%03d.pv", instrument.Prefix, unit),
			Group:       analogGroup,
			Description: fmt.Sprintf("%s %d", instrument.Description, unit),
			EngUnits:    instrument.EngUnits,
		})
	}

	return tags
}

func generateDiscreteTags() []tagSeed {
	instruments := []struct {
		Prefix      string
		Description string
	}{
		{"sp", "Solenoid Valve"},
		{"mp", "Motor Running"},
		{"hs", "Hand Switch"},
	}

	tags := make([]tagSeed, 0, NumDiscreteTags)
	for i := 0; i < NumDiscreteTags; i++ {
		instrument := instruments[i%len(instruments)]
		unit := i/len(instruments) + 1

		tags = append(tags, tagSeed{
			Name:        fmt.Sprintf("%s%03d.pv", instrument.Prefix, unit),
			Group:       discreteGroup,
			Description: fmt.Sprintf("%s %d", instrument.Description, unit),
			EngUnits:    "",
		})
	}

	return tags
}

// copyTagTrends bulk-loads one group table: one row per trend sample, each row
// carrying the tag's attributes the way the SQLplus relational view repeats
// them per history occurrence. Analog tags get a random walk, discrete tags
// get occasional 0/1 flips.
func copyTagTrends(ctx context.Context, connPool *pgxpool.Pool, group string, tags []tagSeed, trendStart time.Time) (int64, error) {
	rows := make([][]any, 0, len(tags)*TrendPointsPerTag)

	for _, tag := range tags {
		value := 50 + rand.Float64()*10
		discrete := float64(rand.IntN(2))

		for i := 0; i < TrendPointsPerTag; i++ {
			sample := value
			if group == discreteGroup {
				if rand.IntN(100) < 5 {
					discrete = 1 - discrete
				}
				sample = discrete
			} else {
				value += rand.Float64()*2 - 1
			}

			rows = append(rows, []any{
				tag.Name,
				tag.Group,
				tag.Description,
				tag.EngUnits,
				"",
				trendStart.Add(time.Duration(i) * TrendStep),
				sample,
			})
		}
	}

	copied, err := connPool.CopyFrom(
		ctx,
		pgx.Identifier{group},
		[]string{"NAME", "IP_TAG_TYPE", "IP_DESCRIPTION", "IP_ENG_UNITS", "IP_DCS_NAME", "IP_TREND_TIME", "IP_TREND_VALUE"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy trends into %s: %w", group, err)
	}

	return copied, nil
}

// copyHistoryActuals bulk-loads resampled actuals into the shared HISTORY
// table. The period is stored in the table's unit of tenths of a second.
func copyHistoryActuals(ctx context.Context, connPool *pgxpool.Pool, tags []tagSeed, trendStart time.Time) (int64, error) {
	points := int(TrendPointsPerTag * TrendStep / HistoryFrequency)
	periodUnits := int64(HistoryFrequency / (100 * time.Millisecond))

	rows := make([][]any, 0, len(tags)*points)

	for _, tag := range tags {
		value := 50 + rand.Float64()*10

		for i := 0; i < points; i++ {
			value += rand.Float64()*2 - 1

			rows = append(rows, []any{
				tag.Name,
				trendStart.Add(time.Duration(i) * HistoryFrequency),
				value,
				2,
				periodUnits,
			})
		}
	}

	copied, err := connPool.CopyFrom(
		ctx,
		pgx.Identifier{historyTable},
		[]string{"NAME", "TS", "VALUE", "REQUEST", "PERIOD"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy actuals into HISTORY: %w", err)
	}

	return copied, nil
}

func formatNumber(n int64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
	} else if n >= 100000 {
		return fmt.Sprintf("%.0fK", float64(n)/1000)
	} else if n >= 10000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return strconv.FormatInt(n, 10)
}
