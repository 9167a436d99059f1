package params

import (
	"os"
	"strconv"
	"sync"
)

// ForkKind distinguishes an Ethereum-lineage hardfork from a Taiko-specific
// one, replacing the `dyn Hardfork` downcast of the source with a closed
// tagged union.
type ForkKind uint8

const (
	EthereumFork ForkKind = iota
	TaikoFork
)

// Hardfork names one activation point in a chain's schedule.
type Hardfork struct {
	Kind ForkKind
	Name string
}

func (h Hardfork) String() string { return h.Name }

// Ethereum-lineage forks, in activation order.
var (
	Frontier        = Hardfork{EthereumFork, "Frontier"}
	Homestead       = Hardfork{EthereumFork, "Homestead"}
	DAOFork         = Hardfork{EthereumFork, "Dao"}
	Tangerine       = Hardfork{EthereumFork, "Tangerine"}
	SpuriousDragon  = Hardfork{EthereumFork, "SpuriousDragon"}
	Byzantium       = Hardfork{EthereumFork, "Byzantium"}
	Constantinople  = Hardfork{EthereumFork, "Constantinople"}
	Petersburg      = Hardfork{EthereumFork, "Petersburg"}
	Istanbul        = Hardfork{EthereumFork, "Istanbul"}
	Berlin          = Hardfork{EthereumFork, "Berlin"}
	London          = Hardfork{EthereumFork, "London"}
	Paris           = Hardfork{EthereumFork, "Paris"}
	Shanghai        = Hardfork{EthereumFork, "Shanghai"}
	Cancun          = Hardfork{EthereumFork, "Cancun"}
	Prague          = Hardfork{EthereumFork, "Prague"}
)

// Taiko-specific forks, in activation order.
var (
	Kalta  = Hardfork{TaikoFork, "Kalta"}
	Hekla  = Hardfork{TaikoFork, "Hekla"}
	Ontake = Hardfork{TaikoFork, "Ontake"}
	Pacaya = Hardfork{TaikoFork, "Pacaya"}
)

// ConditionKind is the tag of a ForkCondition.
type ConditionKind uint8

const (
	ConditionBlock ConditionKind = iota
	ConditionTimestamp
	ConditionTTD
	ConditionNever
)

// ForkCondition is the closed tagged-variant predicate over
// (block-number, timestamp, total-difficulty) that activates a fork.
type ForkCondition struct {
	Kind             ConditionKind
	Block            uint64 // valid when Kind == ConditionBlock
	Timestamp        uint64 // valid when Kind == ConditionTimestamp
	TTDForkBlock     *uint64 // valid when Kind == ConditionTTD; optional companion block
	TotalDifficulty  uint64  // valid when Kind == ConditionTTD
}

// Satisfied reports whether the condition holds at the given head.
func (c ForkCondition) Satisfied(blockNumber, timestamp, totalDifficulty uint64) bool {
	switch c.Kind {
	case ConditionBlock:
		return blockNumber >= c.Block
	case ConditionTimestamp:
		return timestamp >= c.Timestamp
	case ConditionTTD:
		return totalDifficulty >= c.TotalDifficulty
	case ConditionNever:
		return false
	default:
		return false
	}
}

// Activation is the block or timestamp trigger value of the condition,
// used by the fork-id accumulator and "next" computation. ok is false for ConditionNever or
// a TTD condition (total-difficulty isn't a block/timestamp activation
// point and is excluded from the fork-id accumulator, matching upstream
// go-ethereum's forkid treatment of TTD-gated forks).
func (c ForkCondition) Activation() (value uint64, ok bool) {
	switch c.Kind {
	case ConditionBlock:
		return c.Block, true
	case ConditionTimestamp:
		return c.Timestamp, true
	default:
		return 0, false
	}
}

// Activation is one (Hardfork, ForkCondition) entry in a chain's schedule.
type Activation struct {
	Fork      Hardfork
	Condition ForkCondition
}

// Schedule is the ordered sequence of a chain's fork activations, lowest
// precedence first. It never mutates after construction.
type Schedule struct {
	activations []Activation
}

// Activations returns the schedule's entries in order.
func (s *Schedule) Activations() []Activation {
	return s.activations
}

// ActiveSpec resolves the ordinal-max fork whose condition holds at head.
// Precedence: highest-numbered (i.e. latest in schedule order) satisfied
// condition wins; ties broken by later position in the schedule.
func (s *Schedule) ActiveSpec(blockNumber, timestamp, totalDifficulty uint64) Hardfork {
	active := Frontier
	for _, a := range s.activations {
		if a.Condition.Satisfied(blockNumber, timestamp, totalDifficulty) {
			active = a.Fork
		}
	}
	return active
}

// IsActive reports whether the named fork is active at head.
func (s *Schedule) IsActive(fork Hardfork, blockNumber, timestamp, totalDifficulty uint64) bool {
	for _, a := range s.activations {
		if a.Fork == fork {
			return a.Condition.Satisfied(blockNumber, timestamp, totalDifficulty)
		}
	}
	return false
}

func blockCond(n uint64) ForkCondition       { return ForkCondition{Kind: ConditionBlock, Block: n} }
func timestampCond(t uint64) ForkCondition   { return ForkCondition{Kind: ConditionTimestamp, Timestamp: t} }
func ttdCond(td uint64) ForkCondition        { return ForkCondition{Kind: ConditionTTD, TotalDifficulty: td} }

// envOntakeHeight reads an Ontake activation height override from the
// environment, falling back to def on absence or parse failure. The
// protocol never errors on a malformed override.
func envOntakeHeight(envVar string, def uint64) uint64 {
	v, present := os.LookupEnv(envVar)
	if !present {
		return def
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Default Ontake activation heights per chain, overridable via environment.
const (
	DefaultA7OntakeHeight      uint64 = 840512
	DefaultDevOntakeHeight     uint64 = 2000
	DefaultMainnetOntakeHeight uint64 = 538304
)

func baseEthereumActivations() []Activation {
	return []Activation{
		{Frontier, blockCond(0)},
		{Homestead, blockCond(0)},
		{DAOFork, blockCond(0)},
		{Tangerine, blockCond(0)},
		{SpuriousDragon, blockCond(0)},
		{Byzantium, blockCond(0)},
		{Constantinople, blockCond(0)},
		{Petersburg, blockCond(0)},
		{Istanbul, blockCond(0)},
		{Berlin, blockCond(0)},
		{London, blockCond(0)},
		{Paris, ttdCond(0)},
		{Shanghai, timestampCond(0)},
		{Hekla, blockCond(0)},
	}
}

var (
	a7Once, devOnce, mainnetOnce       sync.Once
	a7Schedule, devSchedule, mainnetSchedule *Schedule
)

// A7Schedule returns the hardfork schedule for the Taiko A7 (Hekla
// testnet) chain, building it once and caching it for the life of the
// process.
func A7Schedule() *Schedule {
	a7Once.Do(func() {
		acts := append(baseEthereumActivations(),
			Activation{Ontake, blockCond(envOntakeHeight("HEKLA_ONTAKE_HEIGHT", DefaultA7OntakeHeight))},
		)
		a7Schedule = &Schedule{activations: acts}
	})
	return a7Schedule
}

// DevSchedule returns the hardfork schedule for the Taiko dev chain.
func DevSchedule() *Schedule {
	devOnce.Do(func() {
		acts := append(baseEthereumActivations(),
			Activation{Ontake, blockCond(envOntakeHeight("DEV_ONTAKE_HEIGHT", DefaultDevOntakeHeight))},
		)
		devSchedule = &Schedule{activations: acts}
	})
	return devSchedule
}

// MainnetSchedule returns the hardfork schedule for the Taiko mainnet chain.
func MainnetSchedule() *Schedule {
	mainnetOnce.Do(func() {
		acts := append(baseEthereumActivations(),
			Activation{Ontake, blockCond(envOntakeHeight("MAINNET_ONTAKE_HEIGHT", DefaultMainnetOntakeHeight))},
		)
		mainnetSchedule = &Schedule{activations: acts}
	})
	return mainnetSchedule
}
