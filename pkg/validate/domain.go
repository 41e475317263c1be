package validate

import (
	"fmt"

	"github.com/ormasoftchile/actionspec/pkg/schema"
)

// validateDomain runs cross-field rules over a schema-valid action. Every
// rule reports warnings so the verdict stays that of the schema engine.
func validateDomain(a *schema.Action) []*ValidationError {
	var errs []*ValidationError
	for i, link := range a.Links {
		path := fmt.Sprintf("/links/%d", i)

		// D1: chainId should name a known network
		if id, ok := chainID(link); ok && !schema.KnownChain(id) {
			errs = append(errs, warningf(PhaseDomain, path+"/chainId", "unknown chain id %d", id))
		}

		// D2: parameter ids are unique within one linked action
		// D3: referenced parameters point at an id of the same linked action
		errs = append(errs, validateParameterRefs(link, path)...)

		// D4: displayConfig consistency
		if link.Type == schema.LinkedTxMulti {
			errs = append(errs, validateDisplayConfig(link.TxMulti, path)...)
		}
	}
	return errs
}

func chainID(l schema.LinkedAction) (int64, bool) {
	switch l.Type {
	case schema.LinkedTx:
		return l.Tx.ChainID, true
	case schema.LinkedTxMulti:
		return l.TxMulti.ChainID, true
	case schema.LinkedTransfer:
		if l.Transfer.ChainID != nil {
			return *l.Transfer.ChainID, true
		}
	}
	return 0, false
}

func validateParameterRefs(l schema.LinkedAction, path string) []*ValidationError {
	var errs []*ValidationError
	ids := map[string]string{} // id → path
	var refs []paramAt

	walkParameters(l, path, func(p *schema.Parameter, at string) {
		if p.Type == schema.ParamReferenced {
			refs = append(refs, paramAt{p, at})
			return
		}
		if p.ID == "" {
			return
		}
		if prev, ok := ids[p.ID]; ok {
			errs = append(errs, warningf(PhaseDomain, at+"/id", "duplicate parameter id %q (first at %s)", p.ID, prev))
			return
		}
		ids[p.ID] = at
	})

	for _, r := range refs {
		if _, ok := ids[r.param.RefParameterID]; !ok {
			errs = append(errs, warningf(PhaseDomain, r.path+"/refParameterId",
				"refParameterId %q does not match any parameter id", r.param.RefParameterID))
		}
	}
	return errs
}

type paramAt struct {
	param *schema.Parameter
	path  string
}

// walkParameters visits every parameter of a linked action, including nested
// computed values and contract-read arguments, in document order.
func walkParameters(l schema.LinkedAction, path string, fn func(*schema.Parameter, string)) {
	switch l.Type {
	case schema.LinkedTx:
		walkCall(&l.Tx.TxData, path+"/txData", fn)
	case schema.LinkedTxMulti:
		for i := range l.TxMulti.TxData {
			walkCall(&l.TxMulti.TxData[i], fmt.Sprintf("%s/txData/%d", path, i), fn)
		}
	case schema.LinkedTransfer:
		walkParam(&l.Transfer.Address, path+"/address", fn)
		if l.Transfer.Value.Parameter != nil {
			walkParam(l.Transfer.Value.Parameter, path+"/value", fn)
		}
	}
}

func walkCall(c *schema.ContractCall, path string, fn func(*schema.Parameter, string)) {
	for i := range c.Parameters {
		walkParam(&c.Parameters[i], fmt.Sprintf("%s/parameters/%d", path, i), fn)
	}
}

func walkParam(p *schema.Parameter, path string, fn func(*schema.Parameter, string)) {
	fn(p, path)
	for i := range p.Values {
		walkParam(&p.Values[i], fmt.Sprintf("%s/values/%d", path, i), fn)
	}
	for i := range p.Parameters {
		walkParam(&p.Parameters[i], fmt.Sprintf("%s/parameters/%d", path, i), fn)
	}
}

func validateDisplayConfig(tx *schema.TxMultiAction, path string) []*ValidationError {
	dc := tx.DisplayConfig
	if dc.RenderedTxIndex == nil {
		return nil
	}
	at := path + "/displayConfig/renderedTxIndex"
	var errs []*ValidationError
	if dc.DisplayMode == schema.DisplaySequential {
		errs = append(errs, warningf(PhaseDomain, at, "renderedTxIndex is ignored in %s display mode", dc.DisplayMode))
	}
	if idx := *dc.RenderedTxIndex; idx < 0 || idx >= len(tx.TxData) {
		errs = append(errs, warningf(PhaseDomain, at, "renderedTxIndex %d is out of range for %d transactions", idx, len(tx.TxData)))
	}
	return errs
}
