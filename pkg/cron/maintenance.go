package cron

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Maintenance runs the recurring background chores: sweeping idle
// playback sessions and pruning expired track cache rows. One task run
// at a time; an overlapping tick is skipped.
type Maintenance struct {
	cron      *cron.Cron
	mutex     sync.Mutex
	isRunning bool
	tasks     []Task
}

// Task is one named chore executed on every tick.
type Task struct {
	Name string
	Run  func() error
}

// NewMaintenance schedules the given tasks. The schedule uses the
// seconds-aware cron format, e.g. "0 * * * * *" for every minute.
func NewMaintenance(schedule string, tasks ...Task) (*Maintenance, error) {
	m := &Maintenance{
		cron:  cron.New(cron.WithSeconds()),
		tasks: tasks,
	}

	if _, err := m.cron.AddFunc(schedule, m.runAll); err != nil {
		return nil, err
	}

	m.cron.Start()
	log.Printf("[Cron] scheduled %d maintenance tasks with schedule: %s", len(tasks), schedule)
	return m, nil
}

func (m *Maintenance) runAll() {
	m.mutex.Lock()
	if m.isRunning {
		m.mutex.Unlock()
		log.Println("[Cron] maintenance already in progress, skipping tick")
		return
	}
	m.isRunning = true
	m.mutex.Unlock()

	defer func() {
		m.mutex.Lock()
		m.isRunning = false
		m.mutex.Unlock()
	}()

	for _, task := range m.tasks {
		if err := task.Run(); err != nil {
			log.Printf("[Cron] task %s failed: %v", task.Name, err)
		}
	}
}

// Stop halts the scheduler. Running tasks finish on their own.
func (m *Maintenance) Stop() {
	m.cron.Stop()
	log.Println("[Cron] maintenance scheduler stopped")
}
