package gametime

import (
	"testing"
	"time"
)

var campaignStart = time.Date(1939, 9, 1, 0, 0, 0, 0, time.UTC)

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func TestTick_AdvancesOneDay(t *testing.T) {
	c := New(campaignStart)
	runAll(c.Tick())
	if got := c.Now(); !got.Equal(time.Date(1939, 9, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("after one tick: got %v", got)
	}
}

func TestNew_TruncatesToMidnight(t *testing.T) {
	c := New(time.Date(1939, 9, 1, 17, 45, 12, 0, time.UTC))
	if got := c.Now(); !got.Equal(campaignStart) {
		t.Fatalf("start date not truncated: got %v", got)
	}
}

func TestScheduleOnce_FiresExactlyOnce(t *testing.T) {
	c := New(campaignStart)
	fires := 0
	c.ScheduleOnce(campaignStart.AddDate(0, 0, 3), func() { fires++ })

	runAll(c.Tick()) // day 1
	runAll(c.Tick()) // day 2
	if fires != 0 {
		t.Fatalf("fired early: %d", fires)
	}
	runAll(c.Tick()) // day 3 crosses the target
	if fires != 1 {
		t.Fatalf("after crossing target: got %d fires, want 1", fires)
	}
	for i := 0; i < 10; i++ {
		runAll(c.Tick())
	}
	if fires != 1 {
		t.Fatalf("once entry re-fired: %d", fires)
	}
}

func TestScheduleOnce_DoesNotRefireAfterBackwardReset(t *testing.T) {
	c := New(campaignStart)
	fires := 0
	c.ScheduleOnce(campaignStart.AddDate(0, 0, 2), func() { fires++ })

	runAll(c.AdvanceDays(5))
	if fires != 1 {
		t.Fatalf("first crossing: got %d fires", fires)
	}
	runAll(c.Reset(time.Time{}))
	runAll(c.AdvanceDays(5))
	if fires != 1 {
		t.Fatalf("re-crossing after reset: got %d fires, want 1", fires)
	}
}

func TestScheduleEvery_SkipFiresOncePerInterval(t *testing.T) {
	// Advancing k*N + r days in one jump must fire exactly k times.
	cases := []struct {
		interval, jump, want int
	}{
		{90, 90, 1},
		{90, 89, 0},
		{90, 180, 2},
		{90, 271, 3},
		{7, 365, 52},
	}
	for _, tc := range cases {
		c := New(campaignStart)
		fires := 0
		c.ScheduleEvery(tc.interval, func() { fires++ })
		runAll(c.AdvanceDays(tc.jump))
		if fires != tc.want {
			t.Fatalf("interval=%d jump=%d: got %d fires, want %d", tc.interval, tc.jump, fires, tc.want)
		}
	}
}

func TestScheduleEvery_JumpEqualsManySingleTicks(t *testing.T) {
	const interval, days = 9, 100

	jump := New(campaignStart)
	jumpFires := 0
	jump.ScheduleEvery(interval, func() { jumpFires++ })
	runAll(jump.AdvanceDays(days))

	step := New(campaignStart)
	stepFires := 0
	step.ScheduleEvery(interval, func() { stepFires++ })
	for i := 0; i < days; i++ {
		runAll(step.Tick())
	}

	if jumpFires != stepFires {
		t.Fatalf("fire count depends on jump shape: jump=%d step=%d", jumpFires, stepFires)
	}
	if jumpFires != days/interval {
		t.Fatalf("got %d fires, want %d", jumpFires, days/interval)
	}
}

func TestScheduleEveryIn_OffsetsFirstFire(t *testing.T) {
	c := New(campaignStart)
	fires := 0
	c.ScheduleEveryIn(30, 5, func() { fires++ })

	runAll(c.AdvanceDays(4))
	if fires != 0 {
		t.Fatalf("fired before offset: %d", fires)
	}
	runAll(c.AdvanceDays(1))
	if fires != 1 {
		t.Fatalf("first fire at offset: got %d", fires)
	}
	runAll(c.AdvanceDays(30))
	if fires != 2 {
		t.Fatalf("second fire one interval later: got %d", fires)
	}
}

func TestCancel_RemovesSchedules(t *testing.T) {
	c := New(campaignStart)
	onceFires, everyFires := 0, 0
	onceID := c.ScheduleOnce(campaignStart.AddDate(0, 0, 2), func() { onceFires++ })
	everyID := c.ScheduleEvery(3, func() { everyFires++ })

	c.Cancel(onceID)
	c.Cancel(everyID)
	c.Cancel("unknown") // no-op
	c.Cancel(onceID)    // already removed, no-op

	runAll(c.AdvanceDays(30))
	if onceFires != 0 || everyFires != 0 {
		t.Fatalf("canceled schedules fired: once=%d every=%d", onceFires, everyFires)
	}
}

func TestCancel_FromInsideCallback(t *testing.T) {
	c := New(campaignStart)
	fires := 0
	var id string
	id = c.ScheduleEvery(1, func() {
		fires++
		c.Cancel(id)
	})
	for i := 0; i < 10; i++ {
		runAll(c.Tick())
	}
	if fires != 1 {
		t.Fatalf("self-canceling schedule: got %d fires, want 1", fires)
	}
}

func TestAdvance_CommitsDateBeforeCallbacks(t *testing.T) {
	c := New(campaignStart)
	var seen time.Time
	c.ScheduleOnce(campaignStart.AddDate(0, 0, 1), func() { seen = c.Now() })
	runAll(c.Tick())
	if !seen.Equal(campaignStart.AddDate(0, 0, 1)) {
		t.Fatalf("callback observed uncommitted date: %v", seen)
	}
}

func TestReset_StopsAndReturnsToEpoch(t *testing.T) {
	c := New(campaignStart)
	c.Start()
	runAll(c.AdvanceDays(40))
	runAll(c.Reset(time.Time{}))
	if c.Running() {
		t.Fatalf("clock still running after reset")
	}
	if !c.Now().Equal(campaignStart) {
		t.Fatalf("reset date: got %v", c.Now())
	}
}

func TestReset_ForwardProcessesSkippedWindow(t *testing.T) {
	c := New(campaignStart)
	fires := 0
	c.ScheduleEvery(10, func() { fires++ })
	runAll(c.Reset(campaignStart.AddDate(0, 0, 25)))
	if fires != 2 {
		t.Fatalf("forward reset skipped schedules: got %d fires, want 2", fires)
	}
}

func TestSetSpeed_RejectsNonPositive(t *testing.T) {
	c := New(campaignStart)
	c.SetSpeed(250)
	c.SetSpeed(0)
	c.SetSpeed(-10)
	if got := c.SpeedMs(); got != 250 {
		t.Fatalf("speed: got %d, want 250", got)
	}
}

func TestToggle(t *testing.T) {
	c := New(campaignStart)
	if !c.Toggle() || !c.Running() {
		t.Fatalf("toggle from stopped should run")
	}
	if c.Toggle() || c.Running() {
		t.Fatalf("toggle from running should stop")
	}
}
