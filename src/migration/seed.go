package migration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/acceptance"
	"git.campusqa.org/campusqa/campusqa/src/auth"
	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/moderation"
	"git.campusqa.org/campusqa/campusqa/src/qadata"
	"git.campusqa.org/campusqa/campusqa/src/votes"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/tracelog"
)

// Seed content is written by us, so it skips the real classifier.
var seedModerator = moderation.NewGate(
	moderation.ClassifierFunc(func(ctx context.Context, content string) (moderation.Verdict, error) {
		return moderation.Verdict{}, nil
	}),
	config.ModerationConfig{FailurePolicy: config.FailureReject},
)

// Migrates to the latest version and fills the database with sample users,
// posts, answers, and votes for local dev.
func SampleSeed() {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	fmt.Println("Creating moderator (mod@columbia.edu)...")
	mod := seedUser(ctx, conn, "mod@columbia.edu", "Mo Derator")
	if err := auth.SetModerator(ctx, conn, mod.ID, true); err != nil {
		panic(err)
	}

	fmt.Println("Creating students...")
	students := []*models.User{
		seedUser(ctx, conn, "alice@columbia.edu", "Alice"),
		seedUser(ctx, conn, "bob@barnard.edu", "Bob"),
		seedUser(ctx, conn, "charlie@columbia.edu", "Charlie"),
	}

	fmt.Println("Creating posts and answers...")
	for i := 0; i < 10; i++ {
		asker := students[i%len(students)]
		post, err := qadata.CreatePost(ctx, conn, seedModerator, asker, seedTitle(), lorem.Paragraph(1, 3))
		if err != nil {
			panic(err)
		}

		var answers []*models.Answer
		for j := 0; j < rand.Intn(4); j++ {
			answerer := students[rand.Intn(len(students))]
			answer, err := qadata.CreateAnswer(ctx, conn, seedModerator, answerer, post.ID, lorem.Paragraph(1, 2))
			if err != nil {
				panic(err)
			}
			answers = append(answers, answer)
		}

		for _, voter := range students {
			if voter.ID == asker.ID || rand.Intn(3) == 0 {
				continue
			}
			direction := models.VoteUp
			if rand.Intn(4) == 0 {
				direction = models.VoteDown
			}
			if _, err := votes.CastVote(ctx, conn, post.ID, voter.ID, direction); err != nil {
				panic(err)
			}
		}

		if len(answers) > 0 && randomBool() {
			accepted := answers[rand.Intn(len(answers))]
			if _, err := acceptance.Accept(ctx, conn, post.ID, accepted.ID, asker.ID); err != nil {
				panic(err)
			}
		}
	}

	fmt.Println("Done! Sign in with `admin login <email>`.")
}

func seedUser(ctx context.Context, conn db.ConnOrTx, email, name string) *models.User {
	user, err := auth.UpsertUser(ctx, conn, email, name)
	if err != nil {
		panic(err)
	}
	return user
}

func seedTitle() string {
	title := strings.TrimSuffix(lorem.Sentence(4, 10), ".")
	return title + "?"
}

func randomBool() bool {
	return rand.Intn(2) == 1
}
