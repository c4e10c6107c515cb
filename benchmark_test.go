package evergreen

import (
	"testing"
)

func setupBenchScene(parallel bool) *Scene {
	cfg := DefaultConfig()
	cfg.Parallel = parallel
	cfg.Rand = newTestRand(42)
	for i := range 12 {
		cfg.Photos = append(cfg.Photos, Photo{ID: string(rune('a' + i)), URL: "x"})
	}
	s := NewScene(cfg)
	s.SetMode(ModeFormed)
	s.Tick(1.0 / 60)
	return s
}

func BenchmarkTick_Default_Sequential(b *testing.B) {
	s := setupBenchScene(false)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick(1.0 / 60)
	}
}

func BenchmarkTick_Default_Parallel(b *testing.B) {
	s := setupBenchScene(true)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick(1.0 / 60)
	}
}

func BenchmarkTick_Focus(b *testing.B) {
	s := setupBenchScene(false)
	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick(1.0 / 60)
	}
}

func BenchmarkComputeTransform(b *testing.B) {
	rng := newTestRand(1)
	entities := GenerateOrnaments(rng, 1000, DefaultTreeShape(), MaterialGold)
	cfg := GroupConfig{ScatterScale: 1, FormedScale: 1, IdleAmplitude: 0.35, FormedIdle: 0.02, SpinRate: 0.8}
	p := Pose{Blend: 0.5, Time: 3, Spin: 1.2}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := &entities[i%len(entities)]
		_ = ComputeTransform(e, &cfg, p)
	}
}

func BenchmarkPackInstances_Foliage(b *testing.B) {
	s := setupBenchScene(false)
	inst := s.Group(GroupFoliage).Instances()
	buf := make([]float32, 0, len(inst)*16)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = PackInstances(buf[:0], inst)
	}
}

func BenchmarkClassify(b *testing.B) {
	c := NewClassifier(DefaultGestureConfig(), newTestRand(1))
	hands := []HandSample{
		SyntheticHand(0.05, 0.1, 0.4, 0.5),
		SyntheticHand(0.5, 0.2, 0.6, 0.5),
	}
	mode := ModeScattered
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mode = c.Classify(hands[i%2], mode, testFocusables).Mode
	}
}
