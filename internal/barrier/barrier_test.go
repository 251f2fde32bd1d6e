package barrier

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// awaitAsync runs the wait in a goroutine and returns a channel that
// closes when the waiter passed the barrier.
func awaitAsync(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	return done
}

func assertBlocked(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
		t.Fatal("waiter proceeded before all flags were raised")
	case <-time.After(50 * time.Millisecond):
	}
}

func assertReleased(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("waiter did not proceed after all flags were raised")
	}
}

func TestRaiseIsIdempotent(t *testing.T) {
	b := New()

	b.Raise(FlagLocation)
	b.Raise(FlagLocation)
	b.Raise(FlagLocation)

	assert.True(t, b.Raised(FlagLocation))
	assert.False(t, b.Raised(FlagCurrentWeather))
}

func TestAwaitAllBlocksUntilFullSet(t *testing.T) {
	b := New()

	done := awaitAsync(func() { b.AwaitAll(FlagLocation | FlagForecast) })

	assertBlocked(t, done)
	b.Raise(FlagLocation)
	assertBlocked(t, done)
	b.Raise(FlagForecast)
	assertReleased(t, done)
}

func TestAwaitAllReturnsImmediatelyWhenAlreadyRaised(t *testing.T) {
	b := New()
	b.Raise(FlagLocation)

	assertReleased(t, awaitAsync(func() { b.AwaitAll(FlagLocation) }))
}

func TestAwaitAllSupportsMultipleWaiters(t *testing.T) {
	b := New()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.AwaitAll(FlagLocation)
		}()
	}

	b.Raise(FlagLocation)
	assertReleased(t, awaitAsync(wg.Wait))

	// The flag stays raised for late waiters.
	assert.True(t, b.Raised(FlagLocation))
}

func TestAwaitAllAndClearConsumesFlags(t *testing.T) {
	b := New()

	b.Raise(FlagLocation)
	b.Raise(FlagCurrentWeather)
	b.Raise(FlagForecast)

	done := awaitAsync(func() { b.AwaitAllAndClear(AllDomainFlags) })
	assertBlocked(t, done)

	b.Raise(FlagCalendar)
	assertReleased(t, done)

	assert.False(t, b.Raised(FlagLocation))
	assert.False(t, b.Raised(AllDomainFlags))
}

func TestReraisingDoesNotDoubleRelease(t *testing.T) {
	b := New()
	b.Raise(FlagLocation)
	b.AwaitAll(FlagLocation)

	// A waiter that already consumed the cleared set must block again even
	// if a stale task re-raises a flag it had raised before the clear.
	b.AwaitAllAndClear(FlagLocation)
	b.Raise(FlagLocation)
	b.AwaitAllAndClear(FlagLocation)

	done := awaitAsync(func() { b.AwaitAll(FlagLocation) })
	assertBlocked(t, done)
	b.Raise(FlagLocation)
	assertReleased(t, done)
}

func TestGuardReleasesOnError(t *testing.T) {
	g := NewGuard()

	wantErr := errors.New("draw failed")
	err := g.WithLock(DomainFramebuffer, func() error { return wantErr })
	require.ErrorIs(t, err, wantErr)

	// The domain must be free again.
	assertReleased(t, awaitAsync(func() {
		_ = g.WithLock(DomainFramebuffer, func() error { return nil })
	}))
}

func TestGuardSerializesWithinDomain(t *testing.T) {
	g := NewGuard()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.WithLock(DomainNetwork, func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestGuardDomainsAreIndependent(t *testing.T) {
	g := NewGuard()

	networkHeld := make(chan struct{})
	releaseNetwork := make(chan struct{})
	go func() {
		_ = g.WithLock(DomainNetwork, func() error {
			close(networkHeld)
			<-releaseNetwork
			return nil
		})
	}()
	<-networkHeld

	// Holding the network domain must not block the framebuffer domain.
	assertReleased(t, awaitAsync(func() {
		_ = g.WithLock(DomainFramebuffer, func() error { return nil })
	}))
	close(releaseNetwork)
}
