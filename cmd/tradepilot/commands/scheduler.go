package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tradepilot/backend/internal/scheduler"
	"github.com/wonny/tradepilot/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `후보 생성 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작 (장중 5분 주기 후보 생성)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/tradepilot scheduler start
  go run ./cmd/tradepilot scheduler run candidate_generation`,
}

// schedulerStartCmd starts the scheduler daemon
var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 시작",
	RunE:  runSchedulerStart,
}

// schedulerListCmd lists registered jobs
var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 작업 목록",
	RunE:  runSchedulerList,
}

// schedulerRunCmd runs one job immediately
var schedulerRunCmd = &cobra.Command{
	Use:   "run [job-name]",
	Short: "작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler wires the scheduler with every registered job
func buildScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	candidateJob := jobs.NewCandidateJob(d.service, d.cfg, d.log)
	if err := sched.AddJob(candidateJob); err != nil {
		return nil, fmt.Errorf("register candidate job: %w", err)
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradePilot Scheduler ===")

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 시세 피드가 있어야 생성 작업이 의미 있음
	d.poller.Start(ctx)
	defer d.poller.Stop()

	sched, err := buildScheduler(d)
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println("\n✅ Scheduler running")
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down scheduler...")
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := buildScheduler(d)
	if err != nil {
		return err
	}

	fmt.Println("Registered jobs:")
	for _, job := range sched.ListJobs() {
		fmt.Printf("  %-24s %s\n", job.Name(), job.Schedule())
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := buildScheduler(d)
	if err != nil {
		return err
	}

	fmt.Printf("Running job %s...\n", jobName)
	if err := sched.RunJobNow(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("✅ Job completed")
	return nil
}
