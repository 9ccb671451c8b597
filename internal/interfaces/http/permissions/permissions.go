package permissions

import "fmt"

const (
	EntityVault   = "vault"
	EntityEscrow  = "escrow"
	EntityAccount = "account"
	EntityFaucet  = "faucet"
	EntityWebhook = "webhook"
	EntityHealth  = "health"

	ActionRead  = "read"
	ActionWrite = "write"
)

// Op is the action performed by a route on an entity.
type Op struct {
	Entity string
	Action string
}

// RequiresOperator returns whether only the operator key can perform the
// action.
func (o Op) RequiresOperator() bool {
	return o.Entity == EntityWebhook
}

// Route returns the key of a route in the permission maps.
func Route(method, path string) string {
	return method + " " + path
}

// Whitelist returns the routes that don't require a signed request.
func Whitelist() map[string]Op {
	return map[string]Op{
		Route("GET", "/healthz"):                           {EntityHealth, ActionRead},
		Route("GET", "/metrics"):                           {EntityHealth, ActionRead},
		Route("GET", "/v1/vault/:owner"):                   {EntityVault, ActionRead},
		Route("GET", "/v1/escrow/:maker/:seed"):            {EntityEscrow, ActionRead},
		Route("GET", "/v1/escrows"):                        {EntityEscrow, ActionRead},
		Route("GET", "/v1/receipts"):                       {EntityEscrow, ActionRead},
		Route("GET", "/v1/accounts/:address"):              {EntityAccount, ActionRead},
		Route("GET", "/v1/accounts/:address/tokens/:mint"): {EntityAccount, ActionRead},
	}
}

// AllPermissionsByRoute returns a mapping of the routes requiring a signed
// request to the action they perform. The signer is the caller identity.
func AllPermissionsByRoute() map[string]Op {
	return map[string]Op{
		Route("POST", "/v1/vault/initialize"): {EntityVault, ActionWrite},
		Route("POST", "/v1/vault/deposit"):    {EntityVault, ActionWrite},
		Route("POST", "/v1/vault/withdraw"):   {EntityVault, ActionWrite},
		Route("POST", "/v1/escrow/make"):      {EntityEscrow, ActionWrite},
		Route("POST", "/v1/escrow/take"):      {EntityEscrow, ActionWrite},
		Route("POST", "/v1/escrow/refund"):    {EntityEscrow, ActionWrite},
		Route("POST", "/v1/faucet/airdrop"):   {EntityFaucet, ActionWrite},
		Route("POST", "/v1/faucet/mint"):      {EntityFaucet, ActionWrite},
		Route("POST", "/v1/webhooks"):         {EntityWebhook, ActionWrite},
		Route("DELETE", "/v1/webhooks/:id"):   {EntityWebhook, ActionWrite},
		Route("GET", "/v1/webhooks"):          {EntityWebhook, ActionRead},
	}
}

// Validate makes sure that no route is both whitelisted and restricted.
func Validate() error {
	whitelist := Whitelist()
	for route := range AllPermissionsByRoute() {
		if _, ok := whitelist[route]; ok {
			return fmt.Errorf("route %s is both whitelisted and restricted", route)
		}
	}
	return nil
}
