package state

import "math/big"

// TokenBalanceGet returns the balance of the address for the token class.
// Never-written pairs read as zero.
func (m *Manager) TokenBalanceGet(class uint64, addr [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.readRLP(hashKey(balancePrefix, uint64Bytes(class), addr[:]), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// TokenBalancePut stores the balance of the address for the token class.
func (m *Manager) TokenBalancePut(class uint64, addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.writeRLP(hashKey(balancePrefix, uint64Bytes(class), addr[:]), amount)
}

// TokenApprovalGet reports whether the operator holds an approval-for-all
// grant from the holder.
func (m *Manager) TokenApprovalGet(holder [20]byte, operator [20]byte) (bool, error) {
	var enabled bool
	if _, err := m.readRLP(hashKey(approvalPrefix, holder[:], operator[:]), &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// TokenApprovalPut stores an approval-for-all grant.
func (m *Manager) TokenApprovalPut(holder [20]byte, operator [20]byte, enabled bool) error {
	return m.writeRLP(hashKey(approvalPrefix, holder[:], operator[:]), enabled)
}

// TokenProducerGet returns the issuing producer bound to the token class.
func (m *Manager) TokenProducerGet(class uint64) ([20]byte, bool, error) {
	var addr [20]byte
	ok, err := m.readRLP(hashKey(classProducerPrefix, uint64Bytes(class)), &addr)
	return addr, ok, err
}

// TokenProducerPut binds the issuing producer to the token class.
func (m *Manager) TokenProducerPut(class uint64, producerAddr [20]byte) error {
	return m.writeRLP(hashKey(classProducerPrefix, uint64Bytes(class)), producerAddr)
}
