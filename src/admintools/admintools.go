package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/auth"
	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/threadlock"
	"git.campusqa.org/campusqa/campusqa/src/website"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	loginCommand := &cobra.Command{
		Use:   "login <email> [name]",
		Short: "Sign in as a user and print a session cookie, as the identity provider would after verifying the email",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide an email.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			email := args[0]
			name := strings.Join(args[1:], " ")

			if !auth.NewLoginPolicy(config.Config.Auth).Allows(email) {
				fmt.Printf("%s is not allowed to sign in. Use a campus address or add it to ALLOWED_LOGIN_EMAILS.\n", email)
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user, err := auth.UpsertUser(ctx, conn, email, name)
			if err != nil {
				panic(err)
			}
			session, err := auth.CreateSession(ctx, conn, user.ID)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Signed in as %s (user %d) until %s\n", user.BestName(), user.ID, session.ExpiresAt.Format("2006-01-02 15:04"))
			fmt.Printf("Cookie: %s=%s\n", auth.SessionCookieName, session.ID)
		},
	}
	adminCommand.AddCommand(loginCommand)

	makeModeratorCommand := &cobra.Command{
		Use:   "makemoderator <email>",
		Short: "Let a user redact and delete other people's answers",
		Run: func(cmd *cobra.Command, args []string) {
			setModerator(cmd, args, true)
		},
	}
	adminCommand.AddCommand(makeModeratorCommand)

	revokeModeratorCommand := &cobra.Command{
		Use:   "revokemoderator <email>",
		Short: "Take away a user's moderator powers",
		Run: func(cmd *cobra.Command, args []string) {
			setModerator(cmd, args, false)
		},
	}
	adminCommand.AddCommand(revokeModeratorCommand)

	checkThreadsCommand := &cobra.Command{
		Use:   "checkthreads",
		Short: "List posts whose accepted answer, status, and lock disagree",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			posts, err := db.Query[models.Post](ctx, conn,
				`
				---- Load all posts
				SELECT $columns FROM post ORDER BY id
				`,
			)
			if err != nil {
				panic(err)
			}

			bad := 0
			for _, post := range posts {
				if !threadlock.Consistent(post) {
					bad++
					fmt.Printf("Post %d: status=%s accepted_answer_id=%v locked_at=%v\n", post.ID, post.Status, post.AcceptedAnswerID, post.LockedAt)
				}
			}
			fmt.Printf("Checked %d posts, %d inconsistent.\n", len(posts), bad)
			if bad > 0 {
				os.Exit(1)
			}
		},
	}
	adminCommand.AddCommand(checkThreadsCommand)

	deleteSessionsCommand := &cobra.Command{
		Use:   "deleteexpiredsessions",
		Short: "Delete expired sessions now instead of waiting for the background job",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			n, err := auth.DeleteExpiredSessions(ctx, conn)
			if err != nil {
				panic(err)
			}
			fmt.Printf("Deleted %d expired sessions.\n", n)
		},
	}
	adminCommand.AddCommand(deleteSessionsCommand)
}

func setModerator(cmd *cobra.Command, args []string, moderator bool) {
	if len(args) < 1 {
		fmt.Printf("You must provide an email.\n\n")
		cmd.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	conn := db.NewConn()
	defer conn.Close(ctx)

	user, err := auth.GetUserByEmail(ctx, conn, args[0])
	if err != nil {
		if errors.Is(err, db.NotFound) {
			fmt.Printf("No user with email %s. They must sign in once first.\n", args[0])
			os.Exit(1)
		}
		panic(err)
	}

	if err := auth.SetModerator(ctx, conn, user.ID, moderator); err != nil {
		panic(err)
	}

	if moderator {
		fmt.Printf("%s is now a moderator.\n", user.Email)
	} else {
		fmt.Printf("%s is no longer a moderator.\n", user.Email)
	}
}
