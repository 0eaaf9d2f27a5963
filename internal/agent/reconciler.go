package agent

import (
	"context"
	"fmt"
	"slices"

	"github.com/rokelvisar/npm-agent/internal/logging"
	"github.com/rokelvisar/npm-agent/internal/npm"
)

// Reconciler compares a desired proxy-host spec against current backend
// state and issues the gateway calls needed to converge.
type Reconciler struct {
	logger  *logging.Logger
	gateway ProxyGateway
}

// NewReconciler creates a reconciler over the given gateway.
func NewReconciler(gateway ProxyGateway) *Reconciler {
	return &Reconciler{
		logger:  logging.GetGlobalLogger(),
		gateway: gateway,
	}
}

// Reconcile converges backend state for the spec's domain set: create when
// no entry matches, replace on drift or adoption, otherwise no-op. An entry
// matches when its domain set intersects the spec's; replacement is a
// delete followed by a create.
func (r *Reconciler) Reconcile(ctx context.Context, spec npm.HostSpec) error {
	if len(spec.Domains) == 0 {
		return fmt.Errorf("reconcile called with empty domain set")
	}

	hosts, err := r.gateway.ListHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list proxy hosts: %w", err)
	}

	existing := findByDomains(hosts, spec.Domains)
	if existing == nil {
		_, err := r.gateway.CreateHost(ctx, spec)
		return err
	}

	if !r.needsUpdate(*existing, spec) {
		r.logger.Debug("Host %s is up to date.", spec.Primary())
		return nil
	}

	r.logger.Info("Configuration change detected for %s. Updating...", spec.Primary())
	if err := r.gateway.DeleteHost(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete proxy host %d: %w", existing.ID, err)
	}
	if _, err := r.gateway.CreateHost(ctx, spec); err != nil {
		// The old entry is already gone; the domain stays unproxied until
		// the next event for this container retries the create.
		return fmt.Errorf("failed to recreate proxy host for %s: %w", spec.Primary(), err)
	}
	return nil
}

// needsUpdate reports whether the existing entry drifted from the spec. An
// entry lacking the ownership marker is adopted: logged and rebuilt as
// managed.
func (r *Reconciler) needsUpdate(existing npm.ProxyHost, spec npm.HostSpec) bool {
	if existing.ForwardHost != spec.ForwardHost || existing.ForwardPort != spec.ForwardPort {
		return true
	}
	if existing.SSLForced != spec.SSL {
		return true
	}
	if !existing.Managed() {
		r.logger.Info("Found existing unmanaged host for %s. Adopting...", spec.Primary())
		return true
	}

	existingDomains := slices.Clone(existing.DomainNames)
	requestedDomains := slices.Clone(spec.Domains)
	slices.Sort(existingDomains)
	slices.Sort(requestedDomains)
	return !slices.Equal(existingDomains, requestedDomains)
}

// Cleanup deletes the entry containing the given domain, but only when it
// carries the ownership marker. Entries owned by humans or other tools are
// left untouched.
func (r *Reconciler) Cleanup(ctx context.Context, domain string) error {
	hosts, err := r.gateway.ListHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list proxy hosts: %w", err)
	}

	existing := findByDomains(hosts, []string{domain})
	if existing == nil {
		return nil
	}
	if !existing.Managed() {
		r.logger.Warn("Skipping cleanup of %s: entry %d is not managed by this agent", domain, existing.ID)
		return nil
	}

	return r.gateway.DeleteHost(ctx, existing.ID)
}

// findByDomains returns the first entry whose domain set intersects the
// requested domains. Any overlapping domain counts as a match, so partial
// domain-set drift is still caught.
func findByDomains(hosts []npm.ProxyHost, domains []string) *npm.ProxyHost {
	for i := range hosts {
		for _, d := range domains {
			if slices.Contains(hosts[i].DomainNames, d) {
				return &hosts[i]
			}
		}
	}
	return nil
}
