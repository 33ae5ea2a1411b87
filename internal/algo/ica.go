package algo

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

// localSearchBudget is the per-child Local Search iteration cap applied
// during assimilation.
const localSearchBudget = 50

// duplicateRetryMutationRate is the heavier mutation rate used for a single
// re-roll when a freshly decoded child collides with a previously seen hash.
const duplicateRetryMutationRate = 0.15

// assimilationMutationRate is the swap-mutation rate applied to every child
// before its first decode attempt.
const assimilationMutationRate = 0.05

// Engine runs the imperialist-competitive metaheuristic. It owns the single
// pseudo-random generator, the Zobrist hasher, the empire population, and
// the Pareto archive; nothing here is safe for concurrent use.
type Engine struct {
	inst   *core.Instance
	rng    *rand.Rand
	hasher *Hasher
	archive *Archive
	logger zerolog.Logger

	populationSize int
	numImperialists int
	maxIterations  int

	empires    []*core.Empire
	seenHashes map[uint64]bool
}

// NewEngine constructs an engine for inst. rng must be owned solely by the
// caller's Engine instance; no process-wide generator is used anywhere in
// the package.
func NewEngine(inst *core.Instance, populationSize, numEmpires, maxIterations int, rng *rand.Rand, logger zerolog.Logger) *Engine {
	return &Engine{
		inst:            inst,
		rng:             rng,
		hasher:          NewHasher(inst),
		archive:         NewArchive(),
		logger:          logger,
		populationSize:  populationSize,
		numImperialists: numEmpires,
		maxIterations:   maxIterations,
		seenHashes:      make(map[uint64]bool),
	}
}

// Archive returns the engine's Pareto archive. Safe to call only after Run
// returns.
func (e *Engine) Archive() *Archive {
	return e.archive
}

// Run executes up to maxIterations of assimilation/revolution and
// imperialistic competition, stopping early on convergence (one empire
// left), and returns the resulting archive.
func (e *Engine) Run() *Archive {
	population := e.initializePopulation()
	if len(population) == 0 {
		e.logger.Error().Msg("empty population, aborting run")
		return e.archive
	}
	for _, ind := range population {
		e.archive.Submit(ind.Solution)
	}

	e.empires = e.buildEmpires(population)
	if len(e.empires) == 0 {
		e.logger.Error().Msg("no imperialists selected, aborting run")
		return e.archive
	}

	for iter := 0; iter < e.maxIterations; iter++ {
		if len(e.empires) <= 1 {
			break
		}
		e.assimilateAndRevolt()
		e.compete()

		e.logger.Debug().Int("iteration", iter+1).Int("empires", len(e.empires)).Msg("iteration complete")
		if (iter+1)%10 == 0 {
			e.logger.Info().
				Int("iteration", iter+1).
				Int("archiveSize", len(e.archive.Members())).
				Int("empires", len(e.empires)).
				Msg("progress summary")
		}
		if len(e.empires) <= 1 {
			break
		}
	}
	return e.archive
}

// initializePopulation creates populationSize decoded Individuals from
// uniformly shuffled permutations, rejecting hash duplicates up to a
// ~100*populationSize shuffle budget before accepting duplicates so the
// engine always makes forward progress.
func (e *Engine) initializePopulation() []core.Individual {
	n := e.inst.NumCustomers()
	population := make([]core.Individual, 0, e.populationSize)
	seen := make(map[uint64]bool, e.populationSize)

	maxAttempts := 100 * e.populationSize
	if maxAttempts <= 0 {
		maxAttempts = 100
	}
	for attempts := 0; len(population) < e.populationSize && attempts < maxAttempts; attempts++ {
		perm := randomPermutation(n, e.rng)
		sol := DecodeExact(e.inst, perm, e.rng)
		h := e.hasher.Hash(sol)
		if seen[h] {
			continue
		}
		seen[h] = true
		sol.Hash = h
		population = append(population, core.Individual{Permutation: perm, Solution: sol})
	}
	for len(population) < e.populationSize {
		e.logger.Warn().Msg("duplicate-reject budget exhausted, accepting duplicate individual")
		perm := randomPermutation(n, e.rng)
		sol := DecodeExact(e.inst, perm, e.rng)
		sol.Hash = e.hasher.Hash(sol)
		population = append(population, core.Individual{Permutation: perm, Solution: sol})
	}
	for h := range seen {
		e.seenHashes[h] = true
	}
	return population
}

// buildEmpires non-dominated sorts the population, selects the top
// numImperialists across fronts (randomized within a front) as imperialists,
// and distributes the rest round-robin as colonies.
func (e *Engine) buildEmpires(population []core.Individual) []*core.Empire {
	sols := make([]*core.Solution, len(population))
	for i := range population {
		sols[i] = population[i].Solution
	}
	fronts := NonDominatedSort(sols)
	for _, front := range fronts {
		AssignCrowdingDistance(sols, front)
	}

	numImperialists := e.numImperialists
	if len(population) < numImperialists {
		numImperialists = len(population) / 2
		if numImperialists < 1 {
			numImperialists = 1
		}
	}

	var ordered []int
	for _, front := range fronts {
		shuffled := append([]int(nil), front...)
		e.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		ordered = append(ordered, shuffled...)
	}

	empires := make([]*core.Empire, 0, numImperialists)
	for i := 0; i < numImperialists && i < len(ordered); i++ {
		empires = append(empires, &core.Empire{Imperialist: population[ordered[i]]})
	}
	if len(empires) == 0 {
		return empires
	}

	for i := numImperialists; i < len(ordered); i++ {
		emp := empires[(i-numImperialists)%len(empires)]
		emp.Colonies = append(emp.Colonies, population[ordered[i]])
	}
	for _, emp := range empires {
		e.recomputePower(emp)
	}
	return empires
}

// recomputePower applies power(E) = 1/(rank(imperialist)+1) +
// 0.1 * mean(1/(rank(colony)+1)), omitting the colony term when there are
// none.
func (e *Engine) recomputePower(emp *core.Empire) {
	power := 1.0 / float64(emp.Imperialist.Solution.ParetoRank+1)
	if len(emp.Colonies) > 0 {
		var sum float64
		for _, c := range emp.Colonies {
			sum += 1.0 / float64(c.Solution.ParetoRank+1)
		}
		power += 0.1 * (sum / float64(len(emp.Colonies)))
	}
	emp.Power = power
}

// assimilateAndRevolt runs one round of OX crossover + swap mutation per
// colony, decodes and refines the child, submits it to the archive, and
// applies colony/imperialist replacement on dominance.
func (e *Engine) assimilateAndRevolt() {
	for _, emp := range e.empires {
		for ci := range emp.Colonies {
			colony := emp.Colonies[ci]

			child := orderCrossover(emp.Imperialist.Permutation, colony.Permutation, e.rng)
			mutated := swapMutation(child, assimilationMutationRate, e.rng)
			sol := DecodeExact(e.inst, mutated, e.rng)
			h := e.hasher.Hash(sol)

			if e.seenHashes[h] {
				mutated = swapMutation(child, duplicateRetryMutationRate, e.rng)
				sol = DecodeExact(e.inst, mutated, e.rng)
				h = e.hasher.Hash(sol)
				if e.seenHashes[h] {
					continue
				}
			}
			e.seenHashes[h] = true

			refined := LocalSearch(e.inst, sol, localSearchBudget, e.rng)
			refined.Hash = e.hasher.Hash(refined)
			e.archive.Submit(refined)

			candidate := core.Individual{Permutation: mutated, Solution: refined}
			if refined.Dominates(colony.Solution) {
				emp.Colonies[ci] = candidate
				if refined.Dominates(emp.Imperialist.Solution) {
					emp.Imperialist, emp.Colonies[ci] = candidate, emp.Imperialist
				}
			}
		}
	}
	e.refreshRanks()
	for _, emp := range e.empires {
		e.recomputePower(emp)
	}
}

// refreshRanks re-sorts every current imperialist and colony solution so
// empire power is always computed from reasonably recent Pareto ranks.
func (e *Engine) refreshRanks() {
	var sols []*core.Solution
	for _, emp := range e.empires {
		sols = append(sols, emp.Imperialist.Solution)
		for _, c := range emp.Colonies {
			sols = append(sols, c.Solution)
		}
	}
	fronts := NonDominatedSort(sols)
	for _, front := range fronts {
		AssignCrowdingDistance(sols, front)
	}
}

// compete identifies the weakest empire and either collapses it (if it has
// no colonies, folding its imperialist into the strongest remaining empire)
// or drafts one random colony from it to a roulette-selected winner empire.
func (e *Engine) compete() {
	if len(e.empires) <= 1 {
		return
	}
	weakestIdx := e.weakestEmpireIndex()
	weakest := e.empires[weakestIdx]

	if len(weakest.Colonies) == 0 {
		strongestIdx := e.strongestEmpireIndexExcluding(weakestIdx)
		e.empires[strongestIdx].Colonies = append(e.empires[strongestIdx].Colonies, weakest.Imperialist)
		e.recomputePower(e.empires[strongestIdx])
		e.empires = append(e.empires[:weakestIdx], e.empires[weakestIdx+1:]...)
		return
	}

	colonyIdx := e.rng.Intn(len(weakest.Colonies))
	colony := weakest.Colonies[colonyIdx]
	winnerIdx := e.rouletteSelect()

	weakest.Colonies = append(weakest.Colonies[:colonyIdx], weakest.Colonies[colonyIdx+1:]...)
	e.empires[winnerIdx].Colonies = append(e.empires[winnerIdx].Colonies, colony)

	e.recomputePower(weakest)
	e.recomputePower(e.empires[winnerIdx])
}

func (e *Engine) weakestEmpireIndex() int {
	idx := 0
	for i := 1; i < len(e.empires); i++ {
		if e.empires[i].Power < e.empires[idx].Power {
			idx = i
		}
	}
	return idx
}

func (e *Engine) strongestEmpireIndexExcluding(exclude int) int {
	idx := -1
	for i, emp := range e.empires {
		if i == exclude {
			continue
		}
		if idx == -1 || emp.Power > e.empires[idx].Power {
			idx = i
		}
	}
	return idx
}

// rouletteSelect picks an empire index with probability proportional to its
// power, over every empire including the weakest.
func (e *Engine) rouletteSelect() int {
	var total float64
	for _, emp := range e.empires {
		total += emp.Power
	}
	if total <= 0 {
		return e.rng.Intn(len(e.empires))
	}
	r := e.rng.Float64() * total
	var cum float64
	for i, emp := range e.empires {
		cum += emp.Power
		if r <= cum {
			return i
		}
	}
	return len(e.empires) - 1
}

func randomPermutation(n int, rng *rand.Rand) []core.CustomerID {
	perm := make([]core.CustomerID, n)
	for i := 0; i < n; i++ {
		perm[i] = core.CustomerID(i + 1)
	}
	rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return perm
}

// orderCrossover implements OX: parent1's [a,b] segment is copied verbatim;
// the remaining child positions are filled, cyclically starting just after
// b, by scanning parent2 cyclically from the same point and taking the next
// gene not already present.
func orderCrossover(p1, p2 []core.CustomerID, rng *rand.Rand) []core.CustomerID {
	n := len(p1)
	if n == 0 {
		return nil
	}
	a := rng.Intn(n)
	b := rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	return orderCrossoverAt(p1, p2, a, b)
}

// orderCrossoverAt performs OX with explicit, inclusive, already-ordered cut
// positions a <= b. Split out from orderCrossover so the cut points can be
// pinned in tests.
func orderCrossoverAt(p1, p2 []core.CustomerID, a, b int) []core.CustomerID {
	n := len(p1)
	child := make([]core.CustomerID, n)
	inChild := make(map[core.CustomerID]bool, n)
	for i := a; i <= b; i++ {
		child[i] = p1[i]
		inChild[p1[i]] = true
	}

	nextFree := func(pos int) int {
		pos = (pos + 1) % n
		for pos >= a && pos <= b {
			pos = (pos + 1) % n
		}
		return pos
	}

	childPos := b
	scanPos := b
	filled := b - a + 1
	for filled < n {
		scanPos = (scanPos + 1) % n
		gene := p2[scanPos]
		if inChild[gene] {
			continue
		}
		childPos = nextFree(childPos)
		child[childPos] = gene
		inChild[gene] = true
		filled++
	}
	return child
}

// swapMutation independently, for each position and with probability rate,
// swaps it with a uniformly chosen other position.
func swapMutation(perm []core.CustomerID, rate float64, rng *rand.Rand) []core.CustomerID {
	n := len(perm)
	out := append([]core.CustomerID(nil), perm...)
	if n < 2 {
		return out
	}
	for i := 0; i < n; i++ {
		if rng.Float64() < rate {
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
