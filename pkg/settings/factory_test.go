package settings

import (
	"errors"
	"sync"
	"testing"

	"stateview/internal/store/memory"
	"stateview/pkg/state"
)

func TestFactoryCachesPerRoot(t *testing.T) {
	f, st, root1 := fixture(t)

	v1 := view(t, f, root1)
	v2 := view(t, f, root1)
	if v1 != v2 {
		t.Error("same root should return the cached view")
	}

	updates, err := BuildUpdates(nil, map[string]string{"extra.setting": "x"})
	if err != nil {
		t.Fatal(err)
	}
	root2, err := st.Commit(root1, updates)
	if err != nil {
		t.Fatal(err)
	}
	v3 := view(t, f, root2)
	if v3 == v1 {
		t.Error("distinct roots must not share a view")
	}
}

func TestFactoryEvict(t *testing.T) {
	f, _, root := fixture(t)
	v1 := view(t, f, root)
	f.Evict(root)
	v2 := view(t, f, root)
	if v1 == v2 {
		t.Error("eviction should force a fresh view")
	}
	// Both views stay fully usable; caching is never a correctness matter.
	for _, v := range []*View{v1, v2} {
		if got, _, err := v.GetSetting("my.setting"); err != nil || got != "10" {
			t.Errorf("view after eviction: got %q, %v", got, err)
		}
	}
}

func TestFactoryUnknownRoot(t *testing.T) {
	f := NewStoreFactory(state.NewStore(memory.New()))
	if _, err := f.CreateView("no-such-root"); !errors.Is(err, state.ErrNoRoot) {
		t.Fatalf("expected ErrNoRoot, got %v", err)
	}
}

func TestFactoryConcurrentCreate(t *testing.T) {
	f, _, root := fixture(t)

	const goroutines = 16
	views := make([]*View, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := f.CreateView(root)
			if err != nil {
				t.Error(err)
				return
			}
			views[n] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if views[i] != views[0] {
			t.Fatal("concurrent CreateView returned divergent views")
		}
	}
}

func TestConcurrentLookups(t *testing.T) {
	f, _, root := fixture(t)
	v := view(t, f, root)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok, err := v.GetSetting("my.setting")
			if err != nil || !ok || got != "10" {
				t.Errorf("concurrent GetSetting = %q, %v, %v", got, ok, err)
			}
			list, err := GetList(v, "my.setting.list", nil, Int)
			if err != nil || len(list) != 3 {
				t.Errorf("concurrent GetList = %v, %v", list, err)
			}
		}()
	}
	wg.Wait()
}
