package stats

import (
	"fmt"
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
)

// DefaultSamplingFrequency is the sampling rate in Hz.
const DefaultSamplingFrequency = 10.0

// State is the logging lifecycle of an [Aggregator].
type State int

const (
	NotStarted State = iota
	Logging
	Paused
	Complete
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Logging:
		return "logging"
	case Paused:
		return "paused"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Clock supplies the aggregator's notion of time. Under manual time this is
// the simulated clock, not the wall clock.
type Clock interface {
	Now() float64
	DeltaTime() float64
}

// Frame carries the per-tick measurements the aggregator records.
type Frame struct {
	// DeltaPos and DeltaPosReal are this tick's virtual and real
	// displacement magnitudes.
	DeltaPos     float64
	DeltaPosReal float64

	RealPos    geom.Vec2
	VirtualPos geom.Vec2

	DistanceToBoundary float64
	DistanceToCenter   float64
	// HalfDiameter normalises boundary and centre distances.
	HalfDiameter float64
}

// Summary metric names in output order.
const (
	KeyResetCount                  = "reset_count"
	KeyVirtualDistanceResetsMedian = "virtual_distance_between_resets_median"
	KeyTimeBetweenResetsMedian     = "time_elapsed_between_resets_median"
	KeySumInjectedTranslation      = "sum_injected_translation"
	KeySumInjectedRotationGR       = "sum_injected_rotation_g_r"
	KeySumInjectedRotationGC       = "sum_injected_rotation_g_c"
	KeySumRealDistance             = "sum_real_distance_travelled"
	KeySumVirtualDistance          = "sum_virtual_distance_travelled"
	KeyMinGT                       = "min_g_t"
	KeyMaxGT                       = "max_g_t"
	KeyMinGR                       = "min_g_r"
	KeyMaxGR                       = "max_g_r"
	KeyMinGC                       = "min_g_c"
	KeyMaxGC                       = "max_g_c"
	KeyGTAverage                   = "g_t_average"
	KeyInjectedTranslationAverage  = "injected_translation_average"
	KeyGRAverage                   = "g_r_average"
	KeyInjectedRotationGRAverage   = "injected_rotation_from_rotation_gain_average"
	KeyGCAverage                   = "g_c_average"
	KeyInjectedRotationGCAverage   = "injected_rotation_from_curvature_gain_average"
	KeyInjectedRotationAverage     = "injected_rotation_average"
	KeyRealPositionAverage         = "real_position_average"
	KeyVirtualPositionAverage      = "virtual_position_average"
	KeyDistanceToBoundaryAverage   = "distance_to_boundary_average"
	KeyDistanceToCenterAverage     = "distance_to_center_average"
	KeyNormDistanceBoundaryAverage = "normalized_distance_to_boundary_average"
	KeyNormDistanceCenterAverage   = "normalized_distance_to_center_average"
	KeyExperimentDuration          = "experiment_duration"
	KeyAverageSamplingInterval     = "average_sampling_interval"
)

var SummaryKeys = []string{
	KeyResetCount, KeyVirtualDistanceResetsMedian, KeyTimeBetweenResetsMedian,
	KeySumInjectedTranslation, KeySumInjectedRotationGR, KeySumInjectedRotationGC,
	KeySumRealDistance, KeySumVirtualDistance,
	KeyMinGT, KeyMaxGT, KeyMinGR, KeyMaxGR, KeyMinGC, KeyMaxGC,
	KeyGTAverage, KeyInjectedTranslationAverage, KeyGRAverage, KeyInjectedRotationGRAverage,
	KeyGCAverage, KeyInjectedRotationGCAverage, KeyInjectedRotationAverage,
	KeyRealPositionAverage, KeyVirtualPositionAverage,
	KeyDistanceToBoundaryAverage, KeyDistanceToCenterAverage,
	KeyNormDistanceBoundaryAverage, KeyNormDistanceCenterAverage,
	KeyExperimentDuration, KeyAverageSamplingInterval,
}

// Sampled series names.
const (
	SeriesDistancesToBoundary           = "distances_to_boundary"
	SeriesNormDistancesToBoundary       = "normalized_distances_to_boundary"
	SeriesDistancesToCenter             = "distances_to_center"
	SeriesNormDistancesToCenter         = "normalized_distances_to_center"
	SeriesGT                            = "g_t"
	SeriesInjectedTranslations          = "injected_translations"
	SeriesGR                            = "g_r"
	SeriesInjectedRotationsGR           = "injected_rotations_from_rotation_gain"
	SeriesGC                            = "g_c"
	SeriesInjectedRotationsGC           = "injected_rotations_from_curvature_gain"
	SeriesInjectedRotations             = "injected_rotations"
	SeriesVirtualDistancesBetweenResets = "virtual_distances_between_resets"
	SeriesTimeBetweenResets             = "time_elapsed_between_resets"
	SeriesSamplingIntervals             = "sampling_intervals"
	SeriesUserRealPositions             = "user_real_positions"
	SeriesUserVirtualPositions          = "user_virtual_positions"
)

// Samples holds every sampled series of one experiment.
type Samples struct {
	Scalars map[string][]float64
	Vectors map[string][]geom.Vec2
}

type channel struct {
	buf    Buffer
	series []float64
}

func (c *channel) flush() {
	c.series = append(c.series, c.buf.Flush())
}

type vecChannel struct {
	buf    VecBuffer
	series []geom.Vec2
}

func (c *vecChannel) flush() {
	c.series = append(c.series, c.buf.Flush())
}

type extremum struct {
	min, max float64
}

func newExtremum() extremum {
	return extremum{min: math.Inf(1), max: math.Inf(-1)}
}

func (e *extremum) observe(v float64) {
	e.min = math.Min(e.min, v)
	e.max = math.Max(e.max, v)
}

func (e extremum) minValue() Value {
	if math.IsInf(e.min, 1) {
		return Value{}
	}
	return ScalarValue(e.min)
}

func (e extremum) maxValue() Value {
	if math.IsInf(e.max, -1) {
		return Value{}
	}
	return ScalarValue(e.max)
}

// Aggregator records one experiment's statistics. Other components only
// reach its buffers through the event methods.
type Aggregator struct {
	clock             Clock
	samplingFrequency float64
	state             State

	sumInjectedTranslation float64
	sumInjectedRotationGR  float64
	sumInjectedRotationGC  float64
	sumRealDistance        float64
	sumVirtualDistance     float64
	gT, gR, gC             extremum

	resetCount                int
	virtualDistanceSinceReset float64
	virtualDistancesBetween   []float64
	timeOfLastReset           float64
	timeElapsedBetween        []float64
	beginTime, endTime        float64
	lastSamplingTime          float64
	samplingIntervals         []float64
	halfDiameter              float64

	realPos, virtualPos vecChannel

	translationGain, injectedTranslation channel
	rotationGain, injectedRotationGR     channel
	curvatureGain, injectedRotationGC    channel
	injectedRotation                     channel
	distanceToBoundary, distanceToCenter channel
}

// New returns an aggregator in the NotStarted state. A non-positive
// frequency falls back to DefaultSamplingFrequency.
func New(clock Clock, samplingFrequency float64) *Aggregator {
	if samplingFrequency <= 0 {
		samplingFrequency = DefaultSamplingFrequency
	}
	a := &Aggregator{clock: clock, samplingFrequency: samplingFrequency}
	a.reset()
	a.state = NotStarted
	return a
}

func (a *Aggregator) State() State { return a.state }

func (a *Aggregator) SamplingFrequency() float64 { return a.samplingFrequency }

func (a *Aggregator) reset() {
	now := a.clock.Now()
	*a = Aggregator{
		clock:             a.clock,
		samplingFrequency: a.samplingFrequency,
		state:             a.state,
		gT:                newExtremum(),
		gR:                newExtremum(),
		gC:                newExtremum(),
		beginTime:         now,
		timeOfLastReset:   now,
		lastSamplingTime:  now,
	}
}

// Begin starts a fresh recording from NotStarted or Complete.
func (a *Aggregator) Begin() {
	if a.state == NotStarted || a.state == Complete {
		a.state = Logging
		a.reset()
	}
}

func (a *Aggregator) Pause() {
	if a.state == Logging {
		a.state = Paused
	}
}

func (a *Aggregator) Resume() {
	if a.state == Paused {
		a.state = Logging
	}
}

// End closes the current reset episode and marks the recording complete.
func (a *Aggregator) End() {
	if a.state != Logging {
		return
	}
	now := a.clock.Now()
	a.virtualDistancesBetween = append(a.virtualDistancesBetween, a.virtualDistanceSinceReset)
	a.timeElapsedBetween = append(a.timeElapsedBetween, now-a.timeOfLastReset)
	a.endTime = now
	a.state = Complete
}

// Update records one tick and emits samples once the sampling interval has
// elapsed.
func (a *Aggregator) Update(f Frame) {
	if a.state != Logging {
		return
	}
	dt := a.clock.DeltaTime()
	now := a.clock.Now()

	a.sumVirtualDistance += f.DeltaPos
	a.sumRealDistance += f.DeltaPosReal
	a.virtualDistanceSinceReset += f.DeltaPos
	if f.HalfDiameter > 0 {
		a.halfDiameter = f.HalfDiameter
	}

	a.realPos.buf.Add(f.RealPos.Mul(dt))
	a.virtualPos.buf.Add(f.VirtualPos.Mul(dt))
	a.distanceToBoundary.buf.Add(dt * f.DistanceToBoundary)
	a.distanceToCenter.buf.Add(dt * f.DistanceToCenter)

	if now-a.lastSamplingTime > 1/a.samplingFrequency {
		a.sample()
		a.samplingIntervals = append(a.samplingIntervals, now-a.lastSamplingTime)
		a.lastSamplingTime = now
	}
}

func (a *Aggregator) sample() {
	a.realPos.flush()
	a.virtualPos.flush()
	for _, c := range a.channels() {
		c.flush()
	}
}

func (a *Aggregator) channels() []*channel {
	return []*channel{
		&a.translationGain, &a.injectedTranslation,
		&a.rotationGain, &a.injectedRotationGR,
		&a.curvatureGain, &a.injectedRotationGC,
		&a.injectedRotation,
		&a.distanceToBoundary, &a.distanceToCenter,
	}
}

// TranslationGain records an injected translation. A negative gain shrinks
// the virtual distance travelled.
func (a *Aggregator) TranslationGain(gT float64, applied geom.Vec2) {
	if a.state != Logging {
		return
	}
	dt := a.clock.DeltaTime()
	mag := applied.Len()
	a.sumInjectedTranslation += mag
	a.gT.observe(gT)
	a.sumVirtualDistance += geom.Sign(gT) * mag
	a.virtualDistanceSinceReset += geom.Sign(gT) * mag
	a.translationGain.buf.Add(gT * dt)
	a.injectedTranslation.buf.Add(mag * dt)
}

func (a *Aggregator) RotationGain(gR, degrees float64) {
	if a.state != Logging {
		return
	}
	dt := a.clock.DeltaTime()
	mag := math.Abs(degrees)
	a.sumInjectedRotationGR += mag
	a.gR.observe(gR)
	a.rotationGain.buf.Add(gR * dt)
	a.injectedRotationGR.buf.Add(mag * dt)
	a.injectedRotation.buf.Add(mag * dt)
}

func (a *Aggregator) CurvatureGain(gC, degrees float64) {
	if a.state != Logging {
		return
	}
	dt := a.clock.DeltaTime()
	mag := math.Abs(degrees)
	a.sumInjectedRotationGC += mag
	a.gC.observe(gC)
	a.curvatureGain.buf.Add(gC * dt)
	a.injectedRotationGC.buf.Add(mag * dt)
	a.injectedRotation.buf.Add(mag * dt)
}

// RotationGainReorientation has no accounting yet.
func (a *Aggregator) RotationGainReorientation(gR, degrees float64) error {
	if a.state != Logging {
		return nil
	}
	return ErrUnsupported
}

func (a *Aggregator) TranslationGainReorientation(gT float64, applied geom.Vec2) error {
	if a.state != Logging {
		return nil
	}
	return ErrUnsupported
}

// ResetTriggered closes the current reset episode.
func (a *Aggregator) ResetTriggered() {
	if a.state != Logging {
		return
	}
	now := a.clock.Now()
	a.resetCount++
	a.virtualDistancesBetween = append(a.virtualDistancesBetween, a.virtualDistanceSinceReset)
	a.virtualDistanceSinceReset = 0
	a.timeElapsedBetween = append(a.timeElapsedBetween, now-a.timeOfLastReset)
	a.timeOfLastReset = now
}

func (a *Aggregator) ResetCount() int { return a.resetCount }

func (a *Aggregator) normalize(v float64) float64 {
	if a.halfDiameter <= 0 {
		return 0
	}
	return v / a.halfDiameter
}

// Summary computes the summary row for the current recording.
func (a *Aggregator) Summary(descriptor []Field) Result {
	m := map[string]Value{
		KeyResetCount:                  ScalarValue(float64(a.resetCount)),
		KeyVirtualDistanceResetsMedian: ScalarValue(Median(a.virtualDistancesBetween)),
		KeyTimeBetweenResetsMedian:     ScalarValue(Median(a.timeElapsedBetween)),
		KeySumInjectedTranslation:      ScalarValue(a.sumInjectedTranslation),
		KeySumInjectedRotationGR:       ScalarValue(a.sumInjectedRotationGR),
		KeySumInjectedRotationGC:       ScalarValue(a.sumInjectedRotationGC),
		KeySumRealDistance:             ScalarValue(a.sumRealDistance),
		KeySumVirtualDistance:          ScalarValue(a.sumVirtualDistance),
		KeyMinGT:                       a.gT.minValue(),
		KeyMaxGT:                       a.gT.maxValue(),
		KeyMinGR:                       a.gR.minValue(),
		KeyMaxGR:                       a.gR.maxValue(),
		KeyMinGC:                       a.gC.minValue(),
		KeyMaxGC:                       a.gC.maxValue(),
		KeyGTAverage:                   ScalarValue(MeanAbs(a.translationGain.series)),
		KeyInjectedTranslationAverage:  ScalarValue(Mean(a.injectedTranslation.series)),
		KeyGRAverage:                   ScalarValue(MeanAbs(a.rotationGain.series)),
		KeyInjectedRotationGRAverage:   ScalarValue(Mean(a.injectedRotationGR.series)),
		KeyGCAverage:                   ScalarValue(MeanAbs(a.curvatureGain.series)),
		KeyInjectedRotationGCAverage:   ScalarValue(Mean(a.injectedRotationGC.series)),
		KeyInjectedRotationAverage:     ScalarValue(Mean(a.injectedRotation.series)),
		KeyRealPositionAverage:         VectorValue(MeanVec(a.realPos.series)),
		KeyVirtualPositionAverage:      VectorValue(MeanVec(a.virtualPos.series)),
		KeyDistanceToBoundaryAverage:   ScalarValue(Mean(a.distanceToBoundary.series)),
		KeyDistanceToCenterAverage:     ScalarValue(Mean(a.distanceToCenter.series)),
		KeyNormDistanceBoundaryAverage: ScalarValue(a.normalize(Mean(a.distanceToBoundary.series))),
		KeyNormDistanceCenterAverage:   ScalarValue(a.normalize(Mean(a.distanceToCenter.series))),
		KeyExperimentDuration:          ScalarValue(a.endTime - a.beginTime),
		KeyAverageSamplingInterval:     ScalarValue(Mean(a.samplingIntervals)),
	}
	return Result{Descriptor: append([]Field(nil), descriptor...), Metrics: m}
}

// Sampled returns copies of every sampled series.
func (a *Aggregator) Sampled() Samples {
	inv := 0.0
	if a.halfDiameter > 0 {
		inv = 1 / a.halfDiameter
	}
	cp := func(xs []float64) []float64 { return append([]float64(nil), xs...) }
	cpv := func(vs []geom.Vec2) []geom.Vec2 { return append([]geom.Vec2(nil), vs...) }

	return Samples{
		Scalars: map[string][]float64{
			SeriesDistancesToBoundary:           cp(a.distanceToBoundary.series),
			SeriesNormDistancesToBoundary:       Scale(a.distanceToBoundary.series, inv),
			SeriesDistancesToCenter:             cp(a.distanceToCenter.series),
			SeriesNormDistancesToCenter:         Scale(a.distanceToCenter.series, inv),
			SeriesGT:                            cp(a.translationGain.series),
			SeriesInjectedTranslations:          cp(a.injectedTranslation.series),
			SeriesGR:                            cp(a.rotationGain.series),
			SeriesInjectedRotationsGR:           cp(a.injectedRotationGR.series),
			SeriesGC:                            cp(a.curvatureGain.series),
			SeriesInjectedRotationsGC:           cp(a.injectedRotationGC.series),
			SeriesInjectedRotations:             cp(a.injectedRotation.series),
			SeriesVirtualDistancesBetweenResets: cp(a.virtualDistancesBetween),
			SeriesTimeBetweenResets:             cp(a.timeElapsedBetween),
			SeriesSamplingIntervals:             cp(a.samplingIntervals),
		},
		Vectors: map[string][]geom.Vec2{
			SeriesUserRealPositions:    cpv(a.realPos.series),
			SeriesUserVirtualPositions: cpv(a.virtualPos.series),
		},
	}
}
