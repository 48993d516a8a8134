package auth

import (
	"io"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/core/slidingwindow"
)

func testSecurityConfig() internal.SecurityConfig {
	return internal.SecurityConfig{
		AccountLockoutThreshold: 5,
		AccountLockoutDuration:  15 * time.Minute,
		MinPasswordLength:       8,
		MaxPasswordLength:       128,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("FailedAttemptTracker", func() {
	var (
		tracker *FailedAttemptTracker
		clock   time.Time
	)

	ginkgo.BeforeEach(func() {
		clock = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		tracker = NewFailedAttemptTracker(testSecurityConfig(), slidingwindow.NewMemoryStore(), quietLogger()).
			WithClock(func() time.Time { return clock })
	})

	ginkgo.Describe("RecordFailure", func() {
		ginkgo.Context("below the threshold", func() {
			ginkgo.It("should not report a lockout", func() {
				// When
				var locked bool
				for i := 0; i < 4; i++ {
					locked = tracker.RecordFailure("alice", "10.0.0.1")
				}

				// Then
				gomega.Expect(locked).To(gomega.BeFalse())
				gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("at the threshold", func() {
			ginkgo.It("should report a lockout on the fifth failure", func() {
				// When
				for i := 0; i < 4; i++ {
					gomega.Expect(tracker.RecordFailure("alice", "10.0.0.1")).To(gomega.BeFalse())
				}
				locked := tracker.RecordFailure("alice", "10.0.0.1")

				// Then
				gomega.Expect(locked).To(gomega.BeTrue())
				gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("for distinct usernames or addresses", func() {
			ginkgo.It("should track each (username, address) pair independently", func() {
				// Given: alice locked out from one address
				for i := 0; i < 5; i++ {
					tracker.RecordFailure("alice", "10.0.0.1")
				}

				// Then
				gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeTrue())
				gomega.Expect(tracker.IsLocked("alice", "10.0.0.2")).To(gomega.BeFalse())
				gomega.Expect(tracker.IsLocked("bob", "10.0.0.1")).To(gomega.BeFalse())
			})
		})
	})

	ginkgo.Describe("window expiry", func() {
		ginkgo.It("should unlock once old failures age past the window", func() {
			// Given
			for i := 0; i < 5; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
			}
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeTrue())

			// When: just past the 15 minute window
			clock = clock.Add(15*time.Minute + time.Second)

			// Then
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
		})

		ginkgo.It("should forget expired failures when counting new ones", func() {
			// Given: four stale failures
			for i := 0; i < 4; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
			}

			// When: the window passes, then one fresh failure lands
			clock = clock.Add(16 * time.Minute)
			locked := tracker.RecordFailure("alice", "10.0.0.1")

			// Then: count restarted at one
			gomega.Expect(locked).To(gomega.BeFalse())
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
		})

		ginkgo.It("should keep failures that are still inside the window", func() {
			// Given: three failures, a pause, then two more
			for i := 0; i < 3; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
			}
			clock = clock.Add(10 * time.Minute)
			tracker.RecordFailure("alice", "10.0.0.1")
			locked := tracker.RecordFailure("alice", "10.0.0.1")

			// Then: all five are inside 15 minutes
			gomega.Expect(locked).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Clear", func() {
		ginkgo.It("should reset the count for the pair", func() {
			// Given
			for i := 0; i < 5; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
			}
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeTrue())

			// When
			tracker.Clear("alice", "10.0.0.1")

			// Then
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
			gomega.Expect(tracker.RecordFailure("alice", "10.0.0.1")).To(gomega.BeFalse())
		})

		ginkgo.It("should not touch other pairs", func() {
			// Given
			for i := 0; i < 5; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
				tracker.RecordFailure("alice", "10.0.0.2")
			}

			// When
			tracker.Clear("alice", "10.0.0.1")

			// Then
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
			gomega.Expect(tracker.IsLocked("alice", "10.0.0.2")).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("IsLocked", func() {
		ginkgo.It("should not record an attempt", func() {
			// Given
			for i := 0; i < 4; i++ {
				tracker.RecordFailure("alice", "10.0.0.1")
			}

			// When: repeated checks must not push the count over
			for i := 0; i < 10; i++ {
				gomega.Expect(tracker.IsLocked("alice", "10.0.0.1")).To(gomega.BeFalse())
			}
		})
	})
})
