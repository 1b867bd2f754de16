package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gsem/gradebot/auth"
	"github.com/gsem/gradebot/bot"
	"github.com/gsem/gradebot/bot/telegram"
	"github.com/gsem/gradebot/grading"
	"github.com/gsem/gradebot/internal/config"
	"github.com/gsem/gradebot/progress"
	"github.com/gsem/gradebot/store/jsonstore"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running bot: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Bot stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	st, err := jsonstore.Open(c.GetTokensFile(), c.GetSessionsFile())
	if err != nil {
		return err
	}
	authService, err := auth.NewService(st)
	if err != nil {
		return err
	}
	tracker, err := progress.NewTracker(st)
	if err != nil {
		return err
	}

	answers, err := grading.LoadAnswers(c.GetAnswersFile())
	if err != nil {
		return err
	}
	var pipelineOptions []grading.PipelineOption
	if c.GetStyleCheckEnabled() {
		pipelineOptions = append(pipelineOptions, grading.WithStyleChecker(grading.NewFlake8Checker(c.GetFlake8Binary(), c.GetGradingTimeout())))
	}
	pipeline, err := grading.NewPipeline(answers, grading.NewRunner(c.GetInterpreter(), c.GetGradingTimeout()), pipelineOptions...)
	if err != nil {
		return err
	}

	// The worker outlives the polling context so in-flight submissions finish.
	worker := grading.NewWorker(pipeline, c.GetGradingWorkers())
	if err := worker.Start(context.Background()); err != nil {
		return err
	}

	client, err := telegram.New(c.GetBotToken(), c.GetBotDebug())
	if err != nil {
		_ = worker.Stop()
		return err
	}
	b, err := bot.New(c, client, bot.Services{
		Auth:     authService,
		Progress: tracker,
		Grader:   worker,
		Answers:  answers,
	})
	if err != nil {
		_ = worker.Stop()
		return err
	}
	log.Printf("Bot @%s started, %d task(s), admins: %s\n", client.UserName(), len(answers), c.GetAdminHandles())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, b)
	}()

	if stopped, err := waitForStop(done); stopped {
		cancel()
		returnError = errors.Join(err, stopWorker(worker))
		return returnError
	}
	cancel()
	returnError = shutdown(done, worker)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// waitForStop blocks until a stop signal arrives or polling ends by itself.
// stopped reports the latter, with the error polling ended with.
func waitForStop(done <-chan error) (stopped bool, err error) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return false, nil
	case err := <-done:
		log.Printf("Polling stopped without a signal\n")
		return true, err
	}
}

// shutdown waits for in-flight messages, then stops the grading worker.
func shutdown(done <-chan error, worker *grading.Worker) error {
	var runErr error
	select {
	case runErr = <-done:
	case <-time.After(shutdownTimeout):
		runErr = errors.New("timed out waiting for in-flight messages")
	}
	return errors.Join(runErr, stopWorker(worker))
}

func stopWorker(worker *grading.Worker) error {
	if err := worker.Stop(); err != nil && !errors.Is(err, grading.ErrWorkerNotRunning) {
		return fmt.Errorf("worker.Stop: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
