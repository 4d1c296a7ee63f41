package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/princegrewall/quiz-app/internal/client"
	"github.com/princegrewall/quiz-app/internal/config"
	"github.com/princegrewall/quiz-app/internal/logging"
	"github.com/princegrewall/quiz-app/internal/session"
)

// Terminal front end for the quiz session. Pure view glue: it renders session
// state and feeds user intents back in; all rules live in internal/session.
func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New("quiz-cli", os.Getenv("APP_ENV"))
	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	store := session.NewRedisStore(redisClient, cfg.Quiz.SnapshotKey, 0, logger)
	proxy := client.New(cfg.Quiz.ProxyBaseURL, nil)

	sess := session.New(ctx, session.Options{
		Source:        proxy,
		Sink:          proxy,
		Store:         store,
		Logger:        logger,
		QuestionCount: cfg.Quiz.QuestionCount,
		Duration:      cfg.Quiz.Duration,
		SubmitTimeout: cfg.Quiz.SubmitTimeout,
	})

	in := bufio.NewScanner(os.Stdin)

	if sess.State() == session.StateUnstarted {
		if !startAttempt(ctx, sess, in) {
			return
		}
	} else {
		fmt.Println("Resuming saved attempt.")
	}

	if sess.State() == session.StateActive {
		sess.StartTimer()
		runQuiz(sess, in)
	}

	if sess.State() == session.StateSubmitted {
		printReport(sess)
	}
}

func startAttempt(ctx context.Context, sess *session.Session, in *bufio.Scanner) bool {
	for {
		fmt.Print("Email: ")
		if !in.Scan() {
			return false
		}
		err := sess.Start(ctx, strings.TrimSpace(in.Text()))
		if err == nil {
			return true
		}
		if err == session.ErrInvalidEmail {
			fmt.Println("Please enter a valid email address.")
			continue
		}
		fmt.Println(sess.ErrMessage())
		fmt.Print("Retry? [y/N]: ")
		if !in.Scan() || strings.ToLower(strings.TrimSpace(in.Text())) != "y" {
			return false
		}
	}
}

func runQuiz(sess *session.Session, in *bufio.Scanner) {
	for sess.State() == session.StateActive {
		renderQuestion(sess)
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "n":
			sess.NextQuestion()
		case "p":
			sess.PrevQuestion()
		case "g":
			if len(fields) == 2 {
				if idx, err := strconv.Atoi(fields[1]); err == nil {
					sess.GoToQuestion(idx - 1)
				}
			}
		case "a":
			if len(fields) == 2 {
				answer(sess, fields[1])
			}
		case "s":
			sess.Submit()
		case "q":
			return
		default:
			fmt.Println("commands: n(ext) p(rev) g <question> a <option> s(ubmit) q(uit)")
		}
	}
}

func answer(sess *session.Session, choice string) {
	q, ok := sess.CurrentQuestion()
	if !ok {
		return
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(q.Options) {
		fmt.Println("pick an option number")
		return
	}
	if err := sess.SelectAnswer(q.ID, q.Options[idx-1]); err != nil {
		fmt.Println(err)
	}
}

func renderQuestion(sess *session.Session) {
	q, ok := sess.CurrentQuestion()
	if !ok {
		return
	}
	remaining := sess.Remaining()
	fmt.Printf("\n[%02d:%02d] Question %d/%d (%s, %s)\n",
		remaining/60, remaining%60, sess.CurrentIndex()+1, len(sess.Questions()), q.Category, q.Difficulty)
	fmt.Println(q.Prompt)
	chosen, _ := sess.Answer(q.ID)
	for i, opt := range q.Options {
		marker := " "
		if opt == chosen {
			marker = "*"
		}
		fmt.Printf("  %s %d. %s\n", marker, i+1, opt)
	}
}

func printReport(sess *session.Session) {
	score := sess.Score()
	fmt.Printf("\nFinal score: %d/%d (%.0f%%)\n", score.Correct, score.Total, score.Percent())
	for i, res := range sess.Results() {
		status := "unanswered"
		if res.UserAnswer != nil {
			if res.IsCorrect {
				status = "correct"
			} else {
				status = fmt.Sprintf("wrong (was %q)", res.Question.CorrectAnswer)
			}
		}
		fmt.Printf("%2d. %s: %s\n", i+1, res.Question.Prompt, status)
	}
}
