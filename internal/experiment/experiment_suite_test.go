package experiment_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/stats"
)

func TestExperimentSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Experiment Suite")
}

func metric(r stats.Result, key string) float64 {
	v, ok := r.Get(key)
	Expect(ok).To(BeTrue(), key)
	return v.Scalar
}

func descriptor(r stats.Result, key string) string {
	v, ok := r.Lookup(key)
	Expect(ok).To(BeTrue(), key)
	return v
}

var _ = Describe("Runner", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Paths = []string{"zigzag"}
		cfg.Trials = 2
		cfg.Run.MaxTicks = 1500
	})

	run := func() *experiment.Report {
		report, err := experiment.NewRunner(cfg, experiment.NewRegistry(), nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		return report
	}

	Context("in a small tracking area", func() {
		BeforeEach(func() {
			cfg.TrackingSize = config.SizeConfig{X: 4, Z: 4}
		})

		It("resets the user with two_one_turn", func() {
			report := run()
			Expect(report.Results).To(HaveLen(2))
			for _, r := range report.Results {
				Expect(metric(r, stats.KeyResetCount)).To(BeNumerically(">", 0))
				Expect(descriptor(r, "resetter")).To(Equal("two_one_turn"))
			}
		})

		It("never resets without a resetter", func() {
			cfg.Resetter = "no_reset"
			for _, r := range run().Results {
				Expect(metric(r, stats.KeyResetCount)).To(BeZero())
			}
		})
	})

	It("averages trials into one row per configuration", func() {
		report := run()
		Expect(report.Merged).To(HaveLen(1))
		Expect(report.Summary()).To(Equal(report.Merged))

		want := (metric(report.Results[0], stats.KeySumRealDistance) +
			metric(report.Results[1], stats.KeySumRealDistance)) / 2
		Expect(metric(report.Merged[0], stats.KeySumRealDistance)).To(BeNumerically("~", want, 1e-9))
	})

	It("clamps zigzag rotation gain to the configured bounds", func() {
		cfg.Redirector = "zigzag"
		gains := cfg.Manager.Gains
		for _, r := range run().Results {
			if v, _ := r.Get(stats.KeyMaxGR); v.Kind == stats.Scalar {
				Expect(v.Scalar).To(BeNumerically("<=", gains.MaxRot+1e-9))
			}
			if v, _ := r.Get(stats.KeyMinGR); v.Kind == stats.Scalar {
				Expect(v.Scalar).To(BeNumerically(">=", gains.MinRot-1e-9))
			}
		}
	})

	It("marks capped experiments as timed out", func() {
		cfg.Run.MaxTicks = 50
		cfg.Trials = 1
		report := run()
		Expect(descriptor(report.Results[0], "timed_out")).To(Equal("true"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := experiment.NewRunner(cfg, experiment.NewRegistry(), nil).Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Registry", func() {
	reg := experiment.NewRegistry()

	It("lists every algorithm", func() {
		Expect(reg.ListRedirectors()).To(Equal([]string{"none", "s2c", "s2o", "zigzag"}))
		Expect(reg.ListResetters()).To(Equal([]string{"no_reset", "two_one_turn"}))
	})

	DescribeTable("returns a fresh instance per lookup",
		func(name string) {
			a, err := reg.GetRedirector(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Name()).To(Equal(name))
		},
		Entry("s2c", "s2c"),
		Entry("s2o", "s2o"),
		Entry("zigzag", "zigzag"),
		Entry("none", "none"),
	)

	It("wraps unknown names", func() {
		_, err := reg.GetResetter("freeze")
		Expect(err).To(MatchError(experiment.ErrUnknownResetter))
	})
})
