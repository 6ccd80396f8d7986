package billing

// SignForTest expone la firma v1 para los tests de caja negra del handler.
func SignForTest(payload []byte, ts int64, secret string) string {
	return computeSignature(payload, ts, secret)
}
