// File: main.go
// Brief: Main file and starting point for the locksmith-demo binary: runs
// one of the canned scenarios and prints the diagnostics the tracker's
// error callback received.

package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/errsink"
	"github.com/kassubek-labs/locksmith/locklib"
	"github.com/kassubek-labs/locksmith/memguard"
)

var scenario string

func main() {
	flag.StringVar(&scenario, "scenario", "s1", "Scenario to run: s1..s6")
	flag.Parse()

	go memguard.Supervisor()

	var diagnostics []string
	var mu sync.Mutex
	locklib.DefaultTracker = engine.NewTracker()
	errsink.SetCallback(func(code errcodes.Code, msg string) {
		mu.Lock()
		diagnostics = append(diagnostics, fmt.Sprintf("[%s] %s", code, msg))
		mu.Unlock()
	})

	switch scenario {
	case "s1":
		runS1()
	case "s2":
		runS2()
	case "s3":
		runS3()
	case "s4":
		runS4()
	case "s5":
		runS5()
	case "s6":
		runS6()
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", scenario)
		os.Exit(1)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics reported")
		return
	}
	for _, d := range diagnostics {
		fmt.Println(d)
	}
}

// runS1 is the AB-BA inversion seed scenario.
func runS1() {
	l1 := locklib.NewMutex(nil, locklib.DefaultTracker)
	l2 := locklib.NewMutex(nil, locklib.DefaultTracker)
	ready := make(chan struct{})
	done := make(chan struct{})

	go func() {
		l1.Lock()
		l2.Lock()
		l2.Unlock()
		close(ready)
		<-done
		l1.Unlock()
	}()

	<-ready
	l2.Lock()
	_ = l1.TryLock()
	l2.Unlock()
	close(done)
}

// runS2 is the clean-ordering scenario: no diagnostic expected.
func runS2() {
	l1 := locklib.NewMutex(nil, locklib.DefaultTracker)
	l2 := locklib.NewMutex(nil, locklib.DefaultTracker)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		l1.Lock()
		l2.Lock()
		l2.Unlock()
		l1.Unlock()
	}
	wg.Add(2)
	go worker()
	go worker()
	wg.Wait()
}

// runS3 is the self-deadlock-via-upgrade scenario.
func runS3() {
	m := locklib.NewMutex(nil, locklib.DefaultTracker)
	m.Lock()
	_ = m.Lock()
	m.Unlock()
}

// runS4 is the destroy-while-held scenario.
func runS4() {
	m := locklib.NewMutex(nil, locklib.DefaultTracker)
	m.Lock()
	_ = m.Destroy()
	m.Unlock()
	_ = m.Destroy()
}

// runS5 is the unlock-not-held scenario.
func runS5() {
	m := locklib.NewMutex(nil, locklib.DefaultTracker)
	_ = m.Unlock()
}

// runS6 constructs a three-lock cycle L1->L2->L3->L1 across three
// goroutines, run one after another so the cycle-closing acquisition is
// checked against the two edges already recorded.
func runS6() {
	l1 := locklib.NewMutex(nil, locklib.DefaultTracker)
	l2 := locklib.NewMutex(nil, locklib.DefaultTracker)
	l3 := locklib.NewMutex(nil, locklib.DefaultTracker)

	step := func(first, second *locklib.Mutex) {
		first.Lock()
		time.Sleep(10 * time.Millisecond)
		second.Lock()
		second.Unlock()
		first.Unlock()
	}

	var wg sync.WaitGroup
	for _, pair := range [][2]*locklib.Mutex{{l1, l2}, {l2, l3}, {l3, l1}} {
		wg.Add(1)
		go func() { defer wg.Done(); step(pair[0], pair[1]) }()
		wg.Wait()
	}
}
